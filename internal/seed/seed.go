// Package seed loads the demo dataset into an empty portal database.
package seed

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/iammorganparry/circle/internal/models"
	"github.com/iammorganparry/circle/internal/store"
)

//go:embed default.yaml
var defaultData []byte

// Data is the YAML document shape.
type Data struct {
	Users      []User      `yaml:"users"`
	Cohorts    []Cohort    `yaml:"cohorts"`
	Intakes    []Intake    `yaml:"intakes"`
	CheckIns   []CheckIn   `yaml:"checkins"`
	Worksheets []Worksheet `yaml:"worksheets"`
}

type User struct {
	ID          string      `yaml:"id"`
	Role        models.Role `yaml:"role"`
	FullName    string      `yaml:"fullName"`
	Email       string      `yaml:"email"`
	Phone       string      `yaml:"phone"`
	Affiliation string      `yaml:"affiliation"`
}

type Cohort struct {
	ID           string        `yaml:"id"`
	Name         string        `yaml:"name"`
	Participants []Participant `yaml:"participants"`
	Schedule     []Session     `yaml:"schedule"`
	Logs         []Log         `yaml:"logs"`
}

type Participant struct {
	ID     string                   `yaml:"id"`
	Name   string                   `yaml:"name"`
	Email  string                   `yaml:"email"`
	Status models.ParticipantStatus `yaml:"status"`
}

type Session struct {
	Week     int    `yaml:"week"`
	DateTime string `yaml:"dateTime"`
	ZoomLink string `yaml:"zoomLink"`
}

type Log struct {
	Week               int    `yaml:"week"`
	Dynamics           string `yaml:"dynamics"`
	SignificantMoments string `yaml:"significantMoments"`
	Challenges         string `yaml:"challenges"`
	SelfReflection     string `yaml:"selfReflection"`
}

type Intake struct {
	UserID             string `yaml:"userId"`
	BaselineConnection int    `yaml:"baselineConnection"`
	BaselineStress     int    `yaml:"baselineStress"`
	BaselineEfficacy   int    `yaml:"baselineEfficacy"`
	PrimaryGoal        string `yaml:"primaryGoal"`
	Meaning            string `yaml:"meaningOfIndigenousGenius"`
}

type CheckIn struct {
	UserID     string `yaml:"userId"`
	Connection int    `yaml:"connection"`
	Stress     int    `yaml:"stress"`
	Efficacy   int    `yaml:"efficacy"`
}

type Worksheet struct {
	UserID         string         `yaml:"userId"`
	Week           int            `yaml:"week"`
	Anonymous      bool           `yaml:"anonymous"`
	ConsentToQuote bool           `yaml:"consentToQuote"`
	Data           map[string]any `yaml:"data"`
}

// Default returns the embedded demo dataset.
func Default() (*Data, error) {
	return Parse(defaultData)
}

// Load reads a seed file. An empty path returns the embedded default.
func Load(path string) (*Data, error) {
	if path == "" {
		return Default()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return Parse(raw)
}

// Parse decodes and checks a seed document.
func Parse(raw []byte) (*Data, error) {
	var d Data
	if err := yaml.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("decode seed: %w", err)
	}
	if err := d.validate(); err != nil {
		return nil, fmt.Errorf("invalid seed: %w", err)
	}
	return &d, nil
}

func (d *Data) validate() error {
	for _, c := range d.Cohorts {
		if c.ID == "" || c.Name == "" {
			return fmt.Errorf("cohort needs id and name")
		}
		for _, p := range c.Participants {
			if !p.Status.IsValid() {
				return fmt.Errorf("participant %s: unknown status %q", p.ID, p.Status)
			}
		}
		for _, s := range c.Schedule {
			if !models.ValidWeek(s.Week) {
				return fmt.Errorf("cohort %s: week %d out of range", c.ID, s.Week)
			}
		}
		for _, l := range c.Logs {
			if !models.ValidWeek(l.Week) {
				return fmt.Errorf("cohort %s: log week %d out of range", c.ID, l.Week)
			}
		}
	}
	for _, in := range d.Intakes {
		if !models.ValidRating(in.BaselineConnection) || !models.ValidRating(in.BaselineStress) || !models.ValidRating(in.BaselineEfficacy) {
			return fmt.Errorf("intake %s: rating out of range", in.UserID)
		}
	}
	for _, w := range d.Worksheets {
		if !models.ValidWeek(w.Week) {
			return fmt.Errorf("worksheet %s: week %d out of range", w.UserID, w.Week)
		}
	}
	return nil
}

// Apply inserts the dataset when the database has no cohorts yet. It reports
// whether anything was written.
func Apply(ctx context.Context, s *store.Stores, d *Data, now time.Time) (bool, error) {
	n, err := s.Cohorts.Count(ctx)
	if err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}

	ts := now.Unix()
	for _, u := range d.Users {
		if err := s.Users.Ensure(ctx, &models.User{
			ID: u.ID, Role: u.Role, FullName: u.FullName, Email: u.Email,
			Phone: u.Phone, Affiliation: u.Affiliation, CreatedAt: ts,
		}); err != nil {
			return false, fmt.Errorf("seed user %s: %w", u.ID, err)
		}
	}

	for i, c := range d.Cohorts {
		// Offset creation times so cohorts keep their document order.
		if err := s.Cohorts.Create(ctx, &models.Cohort{ID: c.ID, Name: c.Name, CreatedAt: ts + int64(i)}); err != nil {
			return false, fmt.Errorf("seed cohort %s: %w", c.ID, err)
		}
		for _, p := range c.Participants {
			if err := s.Participants.Create(ctx, &models.Participant{
				ID: p.ID, CohortID: c.ID, Name: p.Name, Email: p.Email, Status: p.Status, CreatedAt: ts,
			}); err != nil {
				return false, fmt.Errorf("seed participant %s: %w", p.ID, err)
			}
		}
		for _, sess := range c.Schedule {
			topic, _ := models.TopicForWeek(sess.Week)
			if err := s.Schedule.Upsert(ctx, &models.Session{
				CohortID: c.ID, WeekNumber: sess.Week, Topic: topic,
				DateTime: sess.DateTime, ZoomLink: sess.ZoomLink,
			}); err != nil {
				return false, fmt.Errorf("seed schedule %s week %d: %w", c.ID, sess.Week, err)
			}
		}
		for _, l := range c.Logs {
			if err := s.Logs.Append(ctx, &models.SessionLog{
				CohortID: c.ID, WeekNumber: l.Week, Dynamics: l.Dynamics,
				SignificantMoments: l.SignificantMoments, Challenges: l.Challenges,
				SelfReflection: l.SelfReflection, Timestamp: ts, Type: models.LogTypeFacilitator,
			}); err != nil {
				return false, fmt.Errorf("seed log %s week %d: %w", c.ID, l.Week, err)
			}
		}
	}

	for _, in := range d.Intakes {
		if err := s.Intakes.Upsert(ctx, &models.Intake{
			UserID: in.UserID, BaselineConnection: in.BaselineConnection,
			BaselineStress: in.BaselineStress, BaselineEfficacy: in.BaselineEfficacy,
			PrimaryGoal: in.PrimaryGoal, MeaningOfIndigenousGenius: in.Meaning,
			SubmittedAt: ts, UpdatedAt: ts,
		}); err != nil {
			return false, fmt.Errorf("seed intake %s: %w", in.UserID, err)
		}
	}
	for _, c := range d.CheckIns {
		if err := s.CheckIns.Upsert(ctx, &models.ClosingCheckIn{
			UserID: c.UserID, Connection: c.Connection, Stress: c.Stress,
			Efficacy: c.Efficacy, SubmittedAt: ts,
		}); err != nil {
			return false, fmt.Errorf("seed checkin %s: %w", c.UserID, err)
		}
	}
	for i, w := range d.Worksheets {
		if err := s.Worksheets.Upsert(ctx, &models.Worksheet{
			UserID: w.UserID, Week: w.Week, Data: w.Data, Anonymous: w.Anonymous,
			ConsentToQuote: w.ConsentToQuote, Date: ts - int64(i),
		}); err != nil {
			return false, fmt.Errorf("seed worksheet %s week %d: %w", w.UserID, w.Week, err)
		}
	}
	return true, nil
}
