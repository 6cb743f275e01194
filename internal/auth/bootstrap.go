package auth

import (
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// ParseBootstrapUsers reads "username:bcrypt-hash:role" entries separated by
// semicolons. The role defaults to staff.
func ParseBootstrapUsers(raw string) ([]User, error) {
	var out []User
	seen := map[string]bool{}
	for _, entry := range strings.Split(raw, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		parts := strings.SplitN(entry, ":", 3)
		if len(parts) < 2 {
			return nil, fmt.Errorf("bootstrap user %q: expected username:hash[:role]", entry)
		}
		username := strings.TrimSpace(parts[0])
		hash := strings.TrimSpace(parts[1])
		if username == "" {
			return nil, fmt.Errorf("bootstrap user %q: empty username", entry)
		}
		if _, err := bcrypt.Cost([]byte(hash)); err != nil {
			return nil, fmt.Errorf("bootstrap user %q: password must be a bcrypt hash: %w", username, err)
		}
		role := RoleStaff
		if len(parts) == 3 && strings.TrimSpace(parts[2]) != "" {
			role = strings.TrimSpace(parts[2])
		}
		if seen[username] {
			return nil, fmt.Errorf("bootstrap user %q listed twice", username)
		}
		seen[username] = true
		out = append(out, User{Username: username, PasswordHash: hash, Role: role, IsActive: true})
	}
	return out, nil
}
