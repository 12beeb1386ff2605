package narrative

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/iammorganparry/circle/internal/models"
)

const grantSystemInstruction = "You are a culturally respectful program reporter. Write concise, funder-friendly summaries with clear metrics and human-centered highlights."

// Fallback texts returned when generation fails.
const (
	GrantSummaryFallback = "Failed to generate summary. Please check your API key or data."
	GuidanceFallback     = "The spirit of the circle is with you. Take a deep breath and let your heart guide your writing."
)

const grantPrompt = `Cohort report data:
- Participants: %d
- Sessions: %d
- Completion rate: %d%%
- Pre averages: connection %s, stress %s, efficacy %s
- Post averages: connection %s, stress %s, efficacy %s
- Changes: connection %s, stress %s, efficacy %s
Selected consented quotes:
%s

Task:
1) Write a 150–200 word narrative summary for a grant report.
2) Provide 5 bullets: Outcomes, Completion, Cultural Resonance, Facilitator Insight, Next Steps.
Keep language grounded, non-extractive, and aligned with Indigenous Genius pillars (Healing, Heritage, Connection).`

const guidancePrompt = `I am a participant in the Indigenous Genius healing circle. We are in %s. I am looking for inspiration for the question: "%s". Can you offer some gentle, culturally resonant prompts or perspectives to help me reflect? Keep it brief and supportive.`

// guidanceWeekLabels are the short week names used in guidance prompts.
var guidanceWeekLabels = [models.ProgramWeeks]string{
	"Week 1: Sacred Space",
	"Week 2: River of Release",
	"Week 3: Mirror",
	"Week 4: Medicine Bundle",
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// GrantPrompt renders the grant-report request for r and quotes.
func GrantPrompt(r models.CohortReport, quotes []string) Prompt {
	return Prompt{
		System: grantSystemInstruction,
		User: fmt.Sprintf(grantPrompt,
			r.Participants, r.Sessions, r.CompletionRatePercent,
			num(r.PreAverages.Connection), num(r.PreAverages.Stress), num(r.PreAverages.Efficacy),
			num(r.PostAverages.Connection), num(r.PostAverages.Stress), num(r.PostAverages.Efficacy),
			num(r.Deltas.ConnectionChange), num(r.Deltas.StressChange), num(r.Deltas.EfficacyChange),
			strings.Join(quotes, "\n"),
		),
	}
}

// GuidancePrompt renders the reflection request for a week. Weeks outside
// 1..3 use the week 4 label.
func GuidancePrompt(week int, question string) Prompt {
	label := guidanceWeekLabels[models.ProgramWeeks-1]
	if week >= 1 && week < models.ProgramWeeks {
		label = guidanceWeekLabels[week-1]
	}
	return Prompt{User: fmt.Sprintf(guidancePrompt, label, question)}
}
