package notify

import (
	"fmt"

	"github.com/suraksha-car-care/backend/internal/model"
)

type message struct {
	to      string
	subject string
	body    string
}

const dateLayout = "Mon Jan 02 2006"

func appointmentMessages(adminAddr string, a *model.Appointment) []message {
	note := a.Message
	if note == "" {
		note = "N/A"
	}
	admin := message{
		to:      adminAddr,
		subject: "New appointment booked",
		body: fmt.Sprintf(`New booking received:

Name: %s
Email: %s
Phone: %s
Service: %s
Date: %s at %s
Car: %s
Address: %s
Message: %s
`, a.Name, a.Email, a.Phone, a.Service, a.Date.Format(dateLayout), a.Time, a.CarModel, a.Address, note),
	}
	customer := message{
		to:      a.Email,
		subject: "Appointment confirmation",
		body: fmt.Sprintf(`Hi %s,

Your appointment has been successfully booked with Suraksha Car Care.

Date: %s
Time: %s
Service: %s
Car: %s

We will contact you shortly. Thank you for choosing us!

- Suraksha Car Care Team
`, a.Name, a.Date.Format(dateLayout), a.Time, a.Service, a.CarModel),
	}
	return []message{admin, customer}
}

func contactMessages(adminAddr string, c *model.Contact) []message {
	phone := c.Phone
	if phone == "" {
		phone = "N/A"
	}
	admin := message{
		to:      adminAddr,
		subject: fmt.Sprintf("New contact form: %s", c.Subject),
		body: fmt.Sprintf(`New contact form submission:

Name: %s
Email: %s
Phone: %s
Subject: %s
Message: %s
`, c.Name, c.Email, phone, c.Subject, c.Message),
	}
	customer := message{
		to:      c.Email,
		subject: "We received your message",
		body: fmt.Sprintf(`Hi %s,

Thank you for contacting Suraksha Car Care.
We have received your message and our team will get back to you soon.

Subject: %s
Message: %s

- Suraksha Car Care Team
`, c.Name, c.Subject, c.Message),
	}
	return []message{admin, customer}
}
