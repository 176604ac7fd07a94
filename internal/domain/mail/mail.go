package mail

// Message is a single transactional e-mail.
type Message struct {
	From    string
	To      []string
	Subject string
	HTML    string
	Text    string
}
