package constants

const (
	ConfigName   = "config"
	ConfigFormat = "yaml"
	EnvPrefix    = "HOSPINTEL"

	ServiceName = "hospintel_backend"

	// PlaceholderEndpoint is shipped as the submission endpoint default.
	// A gateway configured with it never attempts a remote POST.
	PlaceholderEndpoint = "https://api.hospintel.example/v1/submissions"

	StoreLeads     = "leads"
	StoreInquiries = "inquiries"
)
