package normalize

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/wakai-center/wakai-backend/internal/core/domain"
)

// caseGroups buckets records by case number while remembering the order
// in which each case first appeared, so output ordering stays stable.
type caseGroups struct {
	order  []int64
	byCase map[int64][]domain.ConversationRecord
}

func groupByCase(recs []domain.ConversationRecord) *caseGroups {
	g := &caseGroups{byCase: make(map[int64][]domain.ConversationRecord)}
	for _, rec := range recs {
		if !rec.CaseNuc.Valid {
			continue
		}
		nuc := rec.CaseNuc.Value
		if _, ok := g.byCase[nuc]; !ok {
			g.order = append(g.order, nuc)
		}
		g.byCase[nuc] = append(g.byCase[nuc], rec)
	}
	return g
}

// GroupCases folds raw records into one MediationCase per case number.
// The representative record for dates and description is the most recent
// one; status and emotional status come from keyword rules evaluated over
// the concatenation of every record's text in the group.
func (m *Mapper) GroupCases(recs []domain.ConversationRecord) []domain.MediationCase {
	groups := groupByCase(recs)
	cases := make([]domain.MediationCase, 0, len(groups.order))

	for _, nuc := range groups.order {
		group := groups.byCase[nuc]

		participantName := LabelApplicant
		participantName2 := ""
		for _, rec := range group {
			if rec.UserType == domain.UserApplicant {
				participantName = ParticipantLabel(rec.Text(), domain.UserApplicant)
				break
			}
		}
		for _, rec := range group {
			if rec.UserType == domain.UserRespondent {
				participantName2 = ParticipantLabel(rec.Text(), domain.UserRespondent)
				break
			}
		}

		// Newest first. Parsed once so the sort and the derived dates agree.
		dated := make([]struct {
			rec domain.ConversationRecord
			at  time.Time
		}, len(group))
		for i, rec := range group {
			dated[i].rec = rec
			dated[i].at = m.parseTime(rec.CreatedAt)
		}
		sort.SliceStable(dated, func(i, j int) bool { return dated[i].at.After(dated[j].at) })

		newest := dated[0]
		oldest := dated[len(dated)-1]

		var texts []string
		for _, rec := range group {
			if t := rec.Text(); t != "" {
				texts = append(texts, strings.ToLower(t))
			}
		}
		allText := strings.Join(texts, " ")

		cases = append(cases, domain.MediationCase{
			ID:               strconv.FormatInt(nuc, 10),
			ParticipantName:  participantName,
			ParticipantName2: participantName2,
			RUT:              PlaceholderRUT,
			RUT2:             PlaceholderRUT,
			RelationshipType: domain.RelationshipParents,
			MediationType:    domain.MediationVisitation,
			MediationDate:    newest.at,
			Status:           matchRules(allText, statusRules, domain.StatusScheduled),
			Description:      Note(newest.rec.Text()),
			EmotionalStatus:  matchRules(allText, emotionRules, domain.EmotionalNeutral),
			CreatedAt:        oldest.at,
			UpdatedAt:        newest.at,
		})
	}
	return cases
}
