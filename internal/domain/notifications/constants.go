package notifications

const (
	TemplateHireCreated          = "hire_created"
	TemplateFormSubmitted        = "onboarding_form_submitted"
	TemplateFormApproved         = "onboarding_form_approved"
	TemplateFormRejected         = "onboarding_form_rejected"
	TemplateEmployeePromoted     = "employee_promoted"
	TemplateLeaveSubmitted       = "leave_submitted"
	TemplateLeaveManagerApproved = "leave_manager_approved"
	TemplateLeaveApproved        = "leave_approved"
	TemplateLeaveRejected        = "leave_rejected"
)

// KeyTempPassword carries a one-time credential. It is rendered into mail
// bodies only and never published as event data.
const KeyTempPassword = "tempPassword"

var secretKeys = []string{KeyTempPassword}

const (
	ChannelEmail = "email"
	ChannelEvent = "event"
)

const (
	DeliverySent    = "sent"
	DeliveryFailed  = "failed"
	DeliverySkipped = "skipped"
)

const JobDeliver = "notification_delivery"
