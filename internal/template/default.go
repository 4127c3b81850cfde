package template

// DefaultSubject is the embedded subject line of a lead notification.
const DefaultSubject = `New request from {{name}} ({{method}})`

// DefaultTemplate is the embedded notification body.
// It uses {{variable}} placeholders for lead fields.
const DefaultTemplate = `New request {{id}}
Received: {{received}}

Name: {{name}}
Contact: {{contact}}

Services:
{{services}}
Budget: {{budget}}

Project description:
{{description}}
`
