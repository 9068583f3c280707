package identity

import (
	"strings"

	"github.com/sovahealth/courier/internal/models"
)

// Placeholder is what the render layer substitutes when no name source
// resolves. Resolve itself never returns it; an empty DisplayName is the
// explicit signal of failure.
const Placeholder = "Patient"

// Resolution identifies the human counterpart of a thread from the
// clinician's point of view.
type Resolution struct {
	CounterpartID models.ID
	DisplayName   string
}

// Resolve picks the patient counterpart out of a thread record. myID is
// the signed-in clinician's own id, used to rule themselves out when the
// participants carry no role tags. Malformed or partial records degrade
// to later fallback tiers; ok is false only when every source is empty.
func Resolve(t models.Thread, myID models.ID) (Resolution, bool) {
	var res Resolution

	if p, found := pickCounterpart(t.Participants, myID); found {
		res.CounterpartID = p.ID
		if res.CounterpartID == "" && p.Patient != nil {
			res.CounterpartID = p.Patient.ID
		}
		res.DisplayName = participantName(p)
	}

	// Threads without usable participants still often carry denormalized
	// patient fields.
	if res.CounterpartID == "" {
		res.CounterpartID = t.PatientID
		if res.CounterpartID == "" && t.Patient != nil {
			res.CounterpartID = t.Patient.ID
		}
	}
	if res.DisplayName == "" {
		res.DisplayName = threadName(t)
	}

	return res, res.CounterpartID != "" || res.DisplayName != ""
}

func pickCounterpart(participants []models.Participant, myID models.ID) (models.Participant, bool) {
	if len(participants) == 0 {
		return models.Participant{}, false
	}
	for _, p := range participants {
		if strings.EqualFold(p.Role, models.RolePatient) {
			return p, true
		}
	}
	for _, p := range participants {
		if p.Patient != nil {
			return p, true
		}
	}
	if myID != "" {
		for _, p := range participants {
			if p.ID != "" && p.ID != myID {
				return p, true
			}
		}
	}
	return participants[0], true
}

func participantName(p models.Participant) string {
	if p.Patient != nil {
		if name := p.Patient.FullName(); name != "" {
			return name
		}
	}
	if name := strings.TrimSpace(p.Name); name != "" {
		return name
	}
	return strings.TrimSpace(p.Username)
}

func threadName(t models.Thread) string {
	if name := strings.TrimSpace(t.PatientName); name != "" {
		return name
	}
	if t.Patient != nil {
		return t.Patient.FullName()
	}
	return ""
}
