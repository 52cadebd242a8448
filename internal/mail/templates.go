package mail

import "fmt"

const emailStyle = `body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
.container { max-width: 600px; margin: 0 auto; padding: 20px; }
.header { color: white; padding: 20px; text-align: center; border-radius: 5px 5px 0 0; }
.content { background-color: #f9fafb; padding: 30px; border-radius: 0 0 5px 5px; }
.button { display: inline-block; padding: 12px 30px; color: white; text-decoration: none; border-radius: 5px; margin: 20px 0; }
.footer { text-align: center; margin-top: 30px; color: #666; font-size: 12px; }`

func wrap(headerColor, heading, inner string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><style>%s</style></head>
<body>
<div class="container">
  <div class="header" style="background-color: %s;"><h1>%s</h1></div>
  <div class="content">%s</div>
  <div class="footer"><p>&copy; Adopt Me. Helping pets find loving homes.</p></div>
</div>
</body>
</html>`, emailStyle, headerColor, heading, inner)
}

// VerificationEmail builds the email sent after registration.
func VerificationEmail(fullName, verificationLink string) (subject, body string) {
	subject = "Verify your Adopt Me account"
	inner := fmt.Sprintf(`<h2>Hello %s,</h2>
<p>Thank you for registering with Adopt Me. Please verify your email address by clicking the button below:</p>
<p style="text-align: center;"><a href="%s" class="button" style="background-color: #3B82F6;">Verify Email Address</a></p>
<p>Or copy and paste this link into your browser:</p>
<p style="word-break: break-all;">%s</p>
<p>If you didn't create an account with us, please ignore this email.</p>
<p>This link will expire in 24 hours.</p>`, fullName, verificationLink, verificationLink)
	return subject, wrap("#3B82F6", "Welcome to Adopt Me!", inner)
}

// PasswordResetEmail builds the forgot-password email.
func PasswordResetEmail(fullName, resetLink string) (subject, body string) {
	subject = "Reset your Adopt Me password"
	inner := fmt.Sprintf(`<h2>Hi %s,</h2>
<p>We received a request to reset your password for your Adopt Me account.</p>
<p style="text-align: center;"><a href="%s" class="button" style="background-color: #EF4444;">Reset Password</a></p>
<p>Or copy and paste this link into your browser:</p>
<p style="word-break: break-all;">%s</p>
<p>If you didn't request this password reset, please ignore this email. Your password will remain unchanged.</p>
<p>This link will expire in 1 hour.</p>`, fullName, resetLink, resetLink)
	return subject, wrap("#EF4444", "Password Reset Request", inner)
}

// WelcomeEmail builds the email sent after successful verification.
func WelcomeEmail(fullName, frontendURL string) (subject, body string) {
	subject = "Welcome to Adopt Me!"
	inner := fmt.Sprintf(`<h2>Hello %s,</h2>
<p>Your email has been verified successfully! You're now part of our community.</p>
<p>You can list pets for adoption, report missing pets, browse available pets and find rescue contacts.</p>
<p style="text-align: center;"><a href="%s" class="button" style="background-color: #10B981;">Get Started</a></p>
<p>Thank you for joining our mission to help pets find loving homes!</p>`, fullName, frontendURL)
	return subject, wrap("#10B981", "Welcome to Adopt Me!", inner)
}

// PetListingEmail confirms that a pet listing went live.
func PetListingEmail(fullName, petName, listingURL string) (subject, body string) {
	subject = "Your pet listing is now live!"
	inner := fmt.Sprintf(`<h2>Hi %s,</h2>
<p>Your listing for <strong>%s</strong> is now live on Adopt Me. Potential adopters can see it and contact you directly.</p>
<p style="text-align: center;"><a href="%s" class="button" style="background-color: #3B82F6;">View Your Listing</a></p>`, fullName, petName, listingURL)
	return subject, wrap("#3B82F6", "Listing Created Successfully!", inner)
}

// MissingReportEmail confirms that a missing-pet report was posted.
func MissingReportEmail(fullName, reportURL string) (subject, body string) {
	subject = "Your missing pet report has been posted"
	inner := fmt.Sprintf(`<h2>Hi %s,</h2>
<p>Your missing pet report is now live. We hope this helps you find your pet quickly!</p>
<p style="text-align: center;"><a href="%s" class="button" style="background-color: #F59E0B;">View Your Report</a></p>
<p>Share your report, check local shelters and keep your contact information up to date. Don't give up hope!</p>`, fullName, reportURL)
	return subject, wrap("#F59E0B", "Missing Pet Report Posted", inner)
}
