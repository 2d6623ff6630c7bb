package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/stemsi/lms-backend/internal/config"
	"github.com/stemsi/lms-backend/internal/model"
	"github.com/stemsi/lms-backend/internal/service"
)

// issue-token mints a development JWT signed with JWT_SECRET, so the API can
// be exercised without the identity service.
func main() {
	var (
		userID      string
		tokenType   string
		permissions string
	)
	flag.StringVar(&userID, "user", "", "User UUID (random when empty)")
	flag.StringVar(&tokenType, "type", string(service.TokenTypeStudent), "Token type: student or instructor")
	flag.StringVar(&permissions, "perms", "", "Comma-separated permissions for instructor tokens, or \"all\"")
	flag.Parse()

	cfg := config.Load()

	id := uuid.New()
	if userID != "" {
		parsed, err := uuid.Parse(userID)
		if err != nil {
			fail("invalid -user: %v", err)
		}
		id = parsed
	}

	tt := service.TokenType(tokenType)
	if tt != service.TokenTypeStudent && tt != service.TokenTypeInstructor {
		fail("invalid -type %q", tokenType)
	}

	perms, err := parsePermissions(permissions)
	if err != nil {
		fail("%v", err)
	}
	if tt == service.TokenTypeStudent && len(perms) > 0 {
		fail("student tokens carry no permissions")
	}

	token, err := service.NewAuthService(cfg).GenerateToken(id, tt, perms)
	if err != nil {
		fail("%v", err)
	}

	fmt.Fprintf(os.Stderr, "user_id=%s type=%s expires_in=%s\n", id, tt, cfg.JWTExpiry)
	fmt.Println(token)
}

var knownPermissions = []model.Permission{
	model.PermissionQuizzesRead,
	model.PermissionQuizzesWrite,
	model.PermissionResultsRead,
}

func parsePermissions(raw string) ([]string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if raw == "all" {
		out := make([]string, len(knownPermissions))
		for i, p := range knownPermissions {
			out[i] = string(p)
		}
		return out, nil
	}

	var out []string
	for _, p := range strings.Split(raw, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		known := false
		for _, k := range knownPermissions {
			if string(k) == p {
				known = true
				break
			}
		}
		if !known {
			return nil, fmt.Errorf("unknown permission %q", p)
		}
		out = append(out, p)
	}
	return out, nil
}

func fail(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "issue-token: "+format+"\n", args...)
	os.Exit(1)
}
