package tests

import (
	"os"
	"testing"

	"github.com/rs/zerolog"

	"github.com/Prajjwal2051/Viewly-sub002/core"
	"github.com/Prajjwal2051/Viewly-sub002/core/user"
	logsvc "github.com/Prajjwal2051/Viewly-sub002/services/logger"
)

func TestMain(m *testing.M) {
	conf := &core.Config{TestMode: true}
	logger := logsvc.NewRollbarLogger(zerolog.Nop(), conf)
	logger.Enable(false)

	// the password policy rejects the common passwords
	user.LoadCommonPasswords(logger)

	os.Exit(m.Run())
}
