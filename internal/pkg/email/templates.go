package email

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	texttemplate "text/template"
)

// BookingDetails carries the values shown in booking emails.
type BookingDetails struct {
	StudentName  string
	StudentEmail string
	StudentPhone string
	CourseID     int64
	CourseName   string
	Date         string
	StartTime    string
	EndTime      string
	// FromName signs the confirmation
	FromName string
}

const confirmationHTML = `<html>
  <head>
    <style>
      body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
      .container { max-width: 600px; margin: 0 auto; padding: 20px; background-color: #f9f9f9; border-radius: 8px; }
      .header { background-color: #4CAF50; color: white; padding: 20px; text-align: center; border-radius: 8px 8px 0 0; }
      .content { background-color: white; padding: 20px; }
      .course-name { font-size: 24px; font-weight: bold; color: #4CAF50; margin-bottom: 10px; }
      .course-details { background-color: #f0f0f0; padding: 15px; border-left: 4px solid #4CAF50; margin: 15px 0; }
      .footer { text-align: center; padding: 20px; font-size: 12px; color: #666; }
    </style>
  </head>
  <body>
    <div class="container">
      <div class="header"><h1>Booking Confirmed!</h1></div>
      <div class="content">
        <p>Hello <strong>{{.StudentName}}</strong>,</p>
        <p>Your booking is confirmed for:</p>
        <div class="course-name">{{.CourseName}} Course</div>
        <div class="course-details">
          <div><strong>Date:</strong> {{.Date}}</div>
          <div><strong>Time:</strong> {{.StartTime}} - {{.EndTime}}</div>
        </div>
        <p>We're excited to see you in this course! Make sure to mark your calendar.</p>
        <p>If you have any questions, feel free to reach out to our support team.</p>
        <p>Best regards,<br><strong>{{.FromName}}</strong></p>
      </div>
      <div class="footer"><p>&copy; Course Booking Platform. All rights reserved.</p></div>
    </div>
  </body>
</html>
`

const confirmationText = `Hello {{.StudentName}},

Thank you for booking the course: {{.CourseName}}.

Course Details:
  Date: {{.Date}}
  Time: {{.StartTime}} - {{.EndTime}}

We look forward to seeing you!

-- {{.FromName}}
`

const ownerAlertHTML = `<html>
  <head>
    <style>
      body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
      .container { max-width: 600px; margin: 0 auto; padding: 20px; background-color: #f9f9f9; border-radius: 8px; }
      .header { background-color: #2196F3; color: white; padding: 20px; text-align: center; border-radius: 8px 8px 0 0; }
      .content { background-color: white; padding: 20px; }
      .booking-details { background-color: #f0f0f0; padding: 15px; border-left: 4px solid #2196F3; margin: 15px 0; }
      .detail-label { font-weight: bold; color: #2196F3; }
      .footer { text-align: center; padding: 20px; font-size: 12px; color: #666; }
    </style>
  </head>
  <body>
    <div class="container">
      <div class="header"><h1>New Course Booking Received</h1></div>
      <div class="content">
        <p>A new student has booked a course. Here are the details:</p>
        <div class="booking-details">
          <div><span class="detail-label">Student Name:</span> {{.StudentName}}</div>
          <div><span class="detail-label">Email:</span> {{.StudentEmail}}</div>
          <div><span class="detail-label">Phone:</span> {{.StudentPhone}}</div>
          <div><span class="detail-label">Course:</span> {{.CourseName}}</div>
          <div><span class="detail-label">Date:</span> {{.Date}}</div>
          <div><span class="detail-label">Time:</span> {{.StartTime}} - {{.EndTime}}</div>
        </div>
        <p>Please review this booking in your course management system.</p>
        <p>Best regards,<br><strong>Course Booking System</strong></p>
      </div>
      <div class="footer"><p>&copy; Course Booking Platform. All rights reserved.</p></div>
    </div>
  </body>
</html>
`

const ownerAlertText = `New Course Booking Notification

Student Name: {{.StudentName}}
Email: {{.StudentEmail}}
Phone: {{.StudentPhone}}
Course: {{.CourseName}}
Date: {{.Date}}
Time: {{.StartTime}} - {{.EndTime}}

-- Course Booking System
`

var (
	confirmationHTMLTmpl = htmltemplate.Must(htmltemplate.New("confirmation.html").Parse(confirmationHTML))
	confirmationTextTmpl = texttemplate.Must(texttemplate.New("confirmation.txt").Parse(confirmationText))
	ownerAlertHTMLTmpl   = htmltemplate.Must(htmltemplate.New("owner.html").Parse(ownerAlertHTML))
	ownerAlertTextTmpl   = texttemplate.Must(texttemplate.New("owner.txt").Parse(ownerAlertText))
)

func render(html *htmltemplate.Template, text *texttemplate.Template, d BookingDetails) (string, string, error) {
	var h, t bytes.Buffer
	if err := html.Execute(&h, d); err != nil {
		return "", "", fmt.Errorf("render %s: %w", html.Name(), err)
	}
	if err := text.Execute(&t, d); err != nil {
		return "", "", fmt.Errorf("render %s: %w", text.Name(), err)
	}
	return h.String(), t.String(), nil
}

// ConfirmationSubject is the subject line of a student confirmation
func ConfirmationSubject(courseName string) string {
	return SanitizeHeader(fmt.Sprintf("Booking Confirmed — %s", courseName))
}

// OwnerAlertSubject is the subject line of an owner alert
func OwnerAlertSubject(studentName, courseName string) string {
	return SanitizeHeader(fmt.Sprintf("New Booking: %s registered for %s", studentName, courseName))
}

// RenderConfirmation builds the confirmation sent to the student.
func RenderConfirmation(to string, d BookingDetails) (Message, error) {
	html, text, err := render(confirmationHTMLTmpl, confirmationTextTmpl, d)
	if err != nil {
		return Message{}, err
	}
	return Message{To: SanitizeHeader(to), Subject: ConfirmationSubject(d.CourseName), HTML: html, Text: text}, nil
}

// RenderOwnerAlert builds the alert sent to the course owner.
func RenderOwnerAlert(to string, d BookingDetails) (Message, error) {
	html, text, err := render(ownerAlertHTMLTmpl, ownerAlertTextTmpl, d)
	if err != nil {
		return Message{}, err
	}
	return Message{To: SanitizeHeader(to), Subject: OwnerAlertSubject(d.StudentName, d.CourseName), HTML: html, Text: text}, nil
}
