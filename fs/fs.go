package appfs

import "embed"

// FS holds the SQL migrations, email templates and static assets shipped with the binary.
//
//go:embed migrations/*.sql templates/email/* assets/*
var FS embed.FS
