package resend

// Config holds Resend API credentials and default sender identity.
type Config struct {
	APIKey      string `env:"RESEND_API_KEY,required"`
	SenderEmail string `env:"RESEND_FROM_EMAIL,required"`
	SenderName  string `env:"RESEND_FROM_NAME" envDefault:""`
}
