package logsvc

import (
	"log"

	"github.com/rollbar/rollbar-go"
	"github.com/rollbar/rollbar-go/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/user"
)

// RollbarLogger reports to Rollbar and mirrors everything to a standard
// logger so DEV consoles and container logs stay readable.
type RollbarLogger struct {
	std *log.Logger
}

var _ core.Logger = (*RollbarLogger)(nil)

func NewRollbarLogger(std *log.Logger, conf *core.Config) *RollbarLogger {
	rollbar.SetToken(conf.RollbarToken)
	rollbar.SetEnvironment(conf.Env)
	rollbar.SetServerHost(conf.Server.Host)
	rollbar.SetCodeVersion(conf.Build)
	rollbar.SetStackTracer(errors.StackTracer)
	return &RollbarLogger{std: std}
}

func (l RollbarLogger) Enable(enabled bool) {
	rollbar.SetEnabled(enabled)
}

// prepare extracts the acting user from args, if any, and attaches it to the
// Rollbar item as the person. Handlers pass either a full user.User or the
// user.Identity rebuilt from token claims; an empty ID (anonymous request)
// clears the person instead of reporting a ghost.
func (l RollbarLogger) prepare(msg string, args []interface{}) []interface{} {
	items := make([]interface{}, 0, len(args)+1)
	items = append(items, msg)

	var id, uname, email string
	for _, arg := range args {
		switch v := arg.(type) {
		case user.User:
			if id == "" {
				id, uname, email = v.ID, v.Username, v.Email
			}
		case user.Identity:
			if id == "" {
				id = v.ID
			}
		default:
			items = append(items, arg)
		}
	}

	if id != "" {
		rollbar.SetPerson(id, uname, email)
	} else {
		rollbar.ClearPerson()
	}
	return items
}

func (l RollbarLogger) print(msg string, args []interface{}) {
	l.std.Println(msg)
	for _, arg := range args {
		l.std.Printf("%+v\n", arg)
	}
}

func (l RollbarLogger) Debug(msg string, args ...interface{}) {
	rollbar.Debug(l.prepare(msg, args)...)
	l.print(msg, args)
}

func (l RollbarLogger) Info(msg string, args ...interface{}) {
	rollbar.Info(l.prepare(msg, args)...)
	l.print(msg, args)
}

func (l RollbarLogger) Warn(msg string, args ...interface{}) {
	rollbar.Warning(l.prepare(msg, args)...)
	l.print(msg, args)
}

func (l RollbarLogger) Error(msg string, args ...interface{}) {
	rollbar.Error(l.prepare(msg, args)...)
	l.print(msg, args)
}

func (l RollbarLogger) Fatal(msg string, args ...interface{}) {
	rollbar.Critical(l.prepare(msg, args)...)
	l.print(msg, args)
	l.std.Fatal(msg)
}
