package config

import (
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
	"gopkg.in/ini.v1"
)

// Config holds the five bridge settings. Read once at startup, immutable
// afterwards.
type Config struct {
	LogPath      string        // log_path: rotating log file location
	ServerName   string        // server_name: server to resolve, matched case-insensitively
	ChannelName  string        // channel_name: channel within that server
	SendInterval time.Duration // send_interval: heartbeat period, float seconds in the file
	Token        string        // token: bot authentication token
}

// Load reads the INI file at path into a Config. Keys live in the default
// section. Missing keys yield zero values; a present but malformed
// send_interval is an error rather than a silent default.
func Load(path string) (*Config, error) {
	f, err := ini.Load(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading config %s", path)
	}

	sec := f.Section(ini.DefaultSection)
	cfg := &Config{
		LogPath:     sec.Key("log_path").String(),
		ServerName:  sec.Key("server_name").String(),
		ChannelName: sec.Key("channel_name").String(),
		Token:       sec.Key("token").String(),
	}

	if raw := sec.Key("send_interval").String(); raw != "" {
		secs, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "send_interval: %q is not a number", raw)
		}
		if secs < 0 {
			return nil, errors.Newf("send_interval: must not be negative, got %v", secs)
		}
		cfg.SendInterval = time.Duration(secs * float64(time.Second))
	}

	return cfg, nil
}
