package notifications

import (
	"bytes"
	"fmt"
	"text/template"
)

type message struct {
	subject *template.Template
	body    *template.Template
}

func mustMessage(name, subject, body string) message {
	return message{
		subject: template.Must(template.New(name + "_subject").Option("missingkey=zero").Parse(subject)),
		body:    template.Must(template.New(name + "_body").Option("missingkey=zero").Parse(body)),
	}
}

var messages = map[string]message{
	TemplateHireCreated: mustMessage(TemplateHireCreated,
		"Welcome aboard",
		"An account has been created for {{.email}}.\nSign in with the temporary password {{.tempPassword}} and complete your employment form.\n"),
	TemplateFormSubmitted: mustMessage(TemplateFormSubmitted,
		"Employment form submitted",
		"{{.email}} submitted a {{.employmentType}} employment form ({{.formId}}) for review.\n"),
	TemplateFormApproved: mustMessage(TemplateFormApproved,
		"Employment form approved",
		"Your employment form has been approved. HR will complete your onboarding shortly.\n{{with .notes}}Notes: {{.}}\n{{end}}"),
	TemplateFormRejected: mustMessage(TemplateFormRejected,
		"Employment form rejected",
		"Your employment form was not approved.\n{{with .notes}}Notes: {{.}}\n{{end}}"),
	TemplateEmployeePromoted: mustMessage(TemplateEmployeePromoted,
		"Welcome, {{.name}}",
		"Your onboarding is complete.\nEmployee code: {{.employeeCode}}\nCompany email: {{.companyEmail}}\nYour company email is now your login.\n"),
	TemplateLeaveSubmitted: mustMessage(TemplateLeaveSubmitted,
		"Leave request {{.series}} awaits your approval",
		"{{.employeeName}} requested {{.totalDays}} day(s) of {{.leaveType}} leave from {{.from}} to {{.to}}.\n{{with .reason}}Reason: {{.}}\n{{end}}"),
	TemplateLeaveManagerApproved: mustMessage(TemplateLeaveManagerApproved,
		"Leave request {{.series}} awaits HR approval",
		"{{.employeeName}}'s leave from {{.from}} to {{.to}} ({{.totalDays}} day(s)) was approved by their manager.\n"),
	TemplateLeaveApproved: mustMessage(TemplateLeaveApproved,
		"Leave request {{.series}} approved",
		"Your leave from {{.from}} to {{.to}} ({{.totalDays}} day(s)) has been approved.\nRemaining balance: {{.remaining}}\n"),
	TemplateLeaveRejected: mustMessage(TemplateLeaveRejected,
		"Leave request {{.series}} rejected",
		"Your leave from {{.from}} to {{.to}} was rejected at the {{.stage}} stage.\n{{with .notes}}Notes: {{.}}\n{{end}}"),
}

// Render produces the subject and plain-text body for a template.
func Render(name string, data map[string]any) (string, string, error) {
	msg, ok := messages[name]
	if !ok {
		return "", "", fmt.Errorf("unknown notification template %q", name)
	}
	var subject, body bytes.Buffer
	if err := msg.subject.Execute(&subject, data); err != nil {
		return "", "", err
	}
	if err := msg.body.Execute(&body, data); err != nil {
		return "", "", err
	}
	return subject.String(), body.String(), nil
}

func Known(name string) bool {
	_, ok := messages[name]
	return ok
}
