package email

import "fmt"

type Message struct {
	Subject  string
	HTMLBody string
	TextBody string
}

func WelcomeMessage(name, orgName, loginURL string) Message {
	return Message{
		Subject: fmt.Sprintf("Welcome to %s on ClientHub", orgName),
		HTMLBody: fmt.Sprintf(
			`<h2>Welcome, %s!</h2><p>Your workspace for <strong>%s</strong> is ready.</p><p><a href="%s">Sign in to get started</a></p>`,
			name, orgName, loginURL),
		TextBody: fmt.Sprintf(
			"Welcome, %s!\n\nYour workspace for %s is ready.\n\nSign in to get started: %s\n",
			name, orgName, loginURL),
	}
}

func OnboardingReminderMessage(name, orgName, currentStep string, completedSteps, totalSteps int, dashboardURL string) Message {
	return Message{
		Subject: fmt.Sprintf("Continue your %s setup", orgName),
		HTMLBody: fmt.Sprintf(
			`<h2>Hi %s,</h2><p>Your %s workspace setup is %d of %d steps done.</p><p>Next up: <strong>%s</strong></p><p><a href="%s">Pick up where you left off</a></p>`,
			name, orgName, completedSteps, totalSteps, currentStep, dashboardURL),
		TextBody: fmt.Sprintf(
			"Hi %s,\n\nYour %s workspace setup is %d of %d steps done.\nNext up: %s\n\nPick up where you left off: %s\n",
			name, orgName, completedSteps, totalSteps, currentStep, dashboardURL),
	}
}

func AdminNotificationMessage(subject, body, actionURL, actionLabel string) Message {
	return Message{
		Subject: subject,
		HTMLBody: fmt.Sprintf(
			`<p>%s</p><p><a href="%s">%s</a></p>`, body, actionURL, actionLabel),
		TextBody: fmt.Sprintf("%s\n\n%s: %s\n", body, actionLabel, actionURL),
	}
}
