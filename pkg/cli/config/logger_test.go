package config_test

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"

	"github.com/m-mizutani/fixtureprov/pkg/cli/config"
	"github.com/m-mizutani/fixtureprov/pkg/domain/types"
)

func TestLogger_Configure(t *testing.T) {
	tests := []struct {
		name      string
		level     string
		json      bool
		wantErr   bool
		wantDebug bool
		wantInfo  bool
	}{
		{name: "debug text", level: "debug", wantDebug: true, wantInfo: true},
		{name: "debug json", level: "debug", json: true, wantDebug: true, wantInfo: true},
		{name: "upper case level", level: "INFO", wantInfo: true},
		{name: "info json", level: "info", json: true, wantInfo: true},
		{name: "warn hides info", level: "Warn"},
		{name: "error json", level: "error", json: true},
		{name: "unknown level", level: "verbose", wantErr: true},
		{name: "empty level", level: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger, err := (&config.Logger{Level: tt.level, JSON: tt.json, Output: &buf}).Configure()
			if tt.wantErr {
				gt.Error(t, err)
				gt.True(t, goerr.HasTag(err, types.ErrTagConfig))
				return
			}
			gt.NoError(t, err)

			logger.Debug("debug message")
			logger.Info("info message")
			logger.Error("error message")

			out := buf.String()
			gt.String(t, out).Contains("error message")
			gt.Value(t, strings.Contains(out, "debug message")).Equal(tt.wantDebug)
			gt.Value(t, strings.Contains(out, "info message")).Equal(tt.wantInfo)
			if tt.json {
				gt.String(t, out).HasPrefix("{")
			}
		})
	}
}

func TestLogger_Flags(t *testing.T) {
	var names []string
	for _, flag := range (&config.Logger{}).Flags() {
		names = append(names, flag.Names()[0])
	}
	gt.A(t, names).Equal([]string{"log-level", "log-json"})
}

func TestLogger_Configure_RedactsToken(t *testing.T) {
	for _, jsonFormat := range []bool{true, false} {
		var buf bytes.Buffer
		logger, err := (&config.Logger{Level: "debug", JSON: jsonFormat, Output: &buf}).Configure()
		gt.NoError(t, err)

		logger.Info("token test",
			slog.Any("token", types.GitHubToken("ghp_very_secret")),
			slog.Any("github", &config.GitHub{Token: "ghp_tagged_secret"}),
		)

		gt.String(t, buf.String()).Contains("token test")
		gt.String(t, buf.String()).NotContains("ghp_very_secret")
		gt.String(t, buf.String()).NotContains("ghp_tagged_secret")
	}
}
