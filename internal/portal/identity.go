package portal

import (
	"context"
	"fmt"
	"strings"

	"github.com/iammorganparry/circle/internal/models"
)

// Demo profile handed out by the mock sign-in.
const (
	demoEmail       = "member@srpmic.gov"
	demoPhone       = "480-000-0000"
	demoAffiliation = "Salt River"
)

// Identify signs the demo user in with the given role. Calling it again
// with the other role is the role switch.
func (s *Service) Identify(ctx context.Context, role models.Role) (*models.User, error) {
	if !role.IsValid() {
		return nil, invalid("role", "must be %q or %q", models.RoleParticipant, models.RoleFacilitator)
	}

	name := string(role)
	u := &models.User{
		ID:          models.DemoUserID,
		Role:        role,
		FullName:    strings.ToUpper(name[:1]) + name[1:],
		Email:       demoEmail,
		Phone:       demoPhone,
		Affiliation: demoAffiliation,
		CreatedAt:   s.now().Unix(),
	}
	if err := s.stores.Users.Ensure(ctx, u); err != nil {
		return nil, fmt.Errorf("identify: %w", err)
	}

	stored, err := s.stores.Users.Get(ctx, u.ID)
	if err != nil {
		return nil, fmt.Errorf("identify: %w", err)
	}
	s.logger.Info("user identified", "user_id", u.ID, "role", role)
	return stored, nil
}
