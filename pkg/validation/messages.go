package validation

// Messages holds the user-facing validation copy.
type Messages struct {
	Required     string
	InvalidEmail string
	InvalidPhone string
	InvalidName  string
	InvalidCity  string
	InvalidDate  string
	FutureDate   string
	UnderAge     string
	OverAge      string
	InvalidMoney string
	SalaryRange  string
	MinSelection string
	Consent      string
}

// DefaultMessages returns the built-in English copy.
func DefaultMessages() Messages {
	return Messages{
		Required:     "This field is required",
		InvalidEmail: "Please enter a valid email address",
		InvalidPhone: "Please enter a valid phone number",
		InvalidName:  "Please enter a valid name (2-50 characters)",
		InvalidCity:  "Please enter a valid city name",
		InvalidDate:  "Please enter a valid date",
		FutureDate:   "Date cannot be in the future",
		UnderAge:     "You must be at least 18 years old",
		OverAge:      "Age must be reasonable",
		InvalidMoney: "Please enter a whole amount in dollars",
		SalaryRange:  "Salary must be between $20,000 and $150,000",
		MinSelection: "Please select at least one skill",
		Consent:      "You must accept the terms and conditions",
	}
}
