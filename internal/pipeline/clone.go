package pipeline

import "github.com/evtimahovich/talentflow/internal/models"

// Deep-copy helpers. Everything that crosses the engine boundary, in or out,
// goes through these so no caller holds a reference into engine state.

func cloneCompany(c *models.Company) *models.Company {
	out := *c
	out.DecisionMakers = append([]models.DecisionMaker(nil), c.DecisionMakers...)
	return &out
}

func cloneVacancy(v *models.Vacancy) *models.Vacancy {
	out := *v
	out.Requirements = append([]string(nil), v.Requirements...)
	out.Responsibilities = append([]string(nil), v.Responsibilities...)
	out.Conditions = append([]string(nil), v.Conditions...)
	out.History = append([]models.VacancyEvent(nil), v.History...)
	return &out
}

func cloneCandidate(c *models.Candidate) *models.Candidate {
	out := *c
	out.Skills = append([]string(nil), c.Skills...)
	if c.AIAnalysis != nil {
		a := *c.AIAnalysis
		out.AIAnalysis = &a
	}
	out.History = make([]models.Interaction, len(c.History))
	for i := range c.History {
		out.History[i] = cloneInteraction(&c.History[i])
	}
	return &out
}

func cloneInteraction(it *models.Interaction) models.Interaction {
	out := *it
	out.Mentions = append([]string(nil), it.Mentions...)
	out.Participants = append([]string(nil), it.Participants...)
	return out
}
