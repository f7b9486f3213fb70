package columns

// DefaultUserFields returns the built-in columns of the users table.
// A new slice is returned on every call.
func DefaultUserFields() []Field {
	return []Field{
		{
			Property: Path("name"),
			Label:    "Name",
			Order:    0,
			Width:    "20%",
			Sortable: true,
			Display:  Formatted(displayName),
		},
		{
			Property: Path("email"),
			Label:    "Email",
			Order:    1,
			Width:    "29%",
			Display:  Formatted(orNA),
		},
		{
			Property:     Path("last_login_relative"),
			Label:        "Latest Login",
			Order:        2,
			Width:        "15%",
			Sortable:     true,
			SortProperty: "last_login",
		},
		{
			Property: Path("logins_count"),
			Label:    "Logins",
			Order:    3,
			Width:    "15%",
			Sortable: true,
		},
	}
}

// displayName falls back through nickname, email and user_id.
func displayName(row Record, value any) (any, error) {
	if present(value) {
		return value, nil
	}
	for _, key := range []string{"nickname", "email", "user_id"} {
		if v := row[key]; present(v) {
			return v, nil
		}
	}
	return nil, nil
}

func orNA(_ Record, value any) (any, error) {
	if present(value) {
		return value, nil
	}
	return "N/A", nil
}
