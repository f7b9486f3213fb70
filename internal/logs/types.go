package logs

// Icon is the glyph shown next to a log event.
type Icon struct {
	Name  string
	Color string
}

// Type describes a log type code.
type Type struct {
	Event string
	Icon  Icon
}

// Unknown describes codes missing from the table.
var Unknown = Type{Event: "Unknown Event", Icon: Icon{Name: "354", Color: "#FFA500"}}

var types = map[string]Type{
	"s":                      {"Success Login", Icon{"312", "#7CD102"}},
	"f":                      {"Failed Login", Icon{"312", "#FF3E00"}},
	"fp":                     {"Incorrect Password", Icon{"312", "#FF3E00"}},
	"fu":                     {"Invalid Email/Username", Icon{"312", "#FF3E00"}},
	"slo":                    {"Success Logout", Icon{"311", "#FFA500"}},
	"flo":                    {"User Logout Failed", Icon{"311", "#FF3E00"}},
	"ss":                     {"Success Signup", Icon{"314", "#7CD102"}},
	"fs":                     {"Failed Signup", Icon{"314", "#FF3E00"}},
	"scp":                    {"Success Change Password", Icon{"280", "#7CD102"}},
	"fcp":                    {"Failed Change Password", Icon{"280", "#FF3E00"}},
	"scpr":                   {"Success Change Password Request", Icon{"280", "#7CD102"}},
	"fcpr":                   {"Failed Change Password Request", Icon{"280", "#FF3E00"}},
	"sv":                     {"Success Verification Email", Icon{"306", "#7CD102"}},
	"fv":                     {"Failed Verification Email", Icon{"306", "#FF3E00"}},
	"limit_wc":               {"Blocked Account", Icon{"313", "#FF3E00"}},
	"limit_mu":               {"Blocked IP Address", Icon{"313", "#FF3E00"}},
	"sapi":                   {"API Operation", Icon{"546", "#7CD102"}},
	"fapi":                   {"Failed API Operation", Icon{"546", "#FF3E00"}},
	"seacft":                 {"Success Exchange", Icon{"456", "#7CD102"}},
	"feacft":                 {"Failed Exchange", Icon{"456", "#FF3E00"}},
	"du":                     {"Deleted User", Icon{"312", "#64A2BF"}},
	"gd_enrollment_complete": {"Guardian Enrollment Complete", Icon{"297", "#7CD102"}},
}

// Describe returns the description of code, or Unknown.
func Describe(code string) Type {
	if t, ok := types[code]; ok {
		return t
	}
	return Unknown
}
