package onboarding

var formTransitions = map[FormStatus][]FormStatus{
	FormDraft:     {FormSubmitted},
	FormSubmitted: {FormApproved, FormRejected},
}

var stagingTransitions = map[StagingStatus][]StagingStatus{
	StagingPending: {StagingAssigned},
}

func (s FormStatus) Valid() bool {
	switch s {
	case FormDraft, FormSubmitted, FormApproved, FormRejected:
		return true
	}
	return false
}

func (s FormStatus) CanTransitionTo(next FormStatus) bool {
	for _, allowed := range formTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether no transition leaves s.
func (s FormStatus) Terminal() bool {
	return len(formTransitions[s]) == 0
}

func (s StagingStatus) CanTransitionTo(next StagingStatus) bool {
	for _, allowed := range stagingTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (t EmploymentType) Valid() bool {
	switch t {
	case TypeIntern, TypeContract, TypeFullTime, TypeManager:
		return true
	}
	return false
}

// deriveStage collapses the form, staging row and master record into one
// stage. A master record always wins.
func deriveStage(form *Form, staging *Staging, employee bool) Stage {
	switch {
	case employee:
		return StageOnboarded
	case staging != nil && staging.Status == StagingAssigned:
		return StageOnboarded
	case staging != nil:
		return StagePendingAssignment
	case form == nil:
		return StageNoForm
	}
	switch form.Status {
	case FormDraft:
		return StageDraft
	case FormSubmitted:
		return StageSubmitted
	case FormRejected:
		return StageRejected
	default:
		return StagePendingAssignment
	}
}
