package leave

var transitions = map[Status][]Status{
	StatusPendingManager:  {StatusManagerApproved, StatusRejected},
	StatusManagerApproved: {StatusApproved, StatusRejected},
}

func (s Status) Valid() bool {
	switch s {
	case StatusPendingManager, StatusManagerApproved, StatusApproved, StatusRejected:
		return true
	}
	return false
}

func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s Status) Terminal() bool {
	return len(transitions[s]) == 0
}
