package utils

import (
	"errors"
	"io/fs"
	"math"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
)

type NetworkConfig struct {
	URL        string `toml:"url"`
	Codec      string `toml:"codec"`
	InboxSize  int    `toml:"inbox_size"`
	OutboxSize int    `toml:"outbox_size"`
}

type PlayerConfig struct {
	Nickname      string  `toml:"nickname"`
	Skin          string  `toml:"skin"`
	Token         string  `toml:"token"`
	Speed         float64 `toml:"speed"`
	ReportEpsilon float64 `toml:"report_epsilon"`
}

type RetryConfig struct {
	Attempts   int `toml:"attempts"`
	IntervalMS int `toml:"interval_ms"`
}

func (r RetryConfig) Interval() time.Duration {
	return time.Duration(r.IntervalMS) * time.Millisecond
}

type LandmarkConfig struct {
	Name    string  `toml:"name"`
	X       float64 `toml:"x"`
	Y       float64 `toml:"y"`
	Near    float64 `toml:"near"`
	Far     float64 `toml:"far"`
	DwellMS int     `toml:"dwell_ms"`
}

func (l LandmarkConfig) Dwell() time.Duration {
	return time.Duration(l.DwellMS) * time.Millisecond
}

type ResolutionConfig struct {
	X, Y int
}

// MinimapConfig sizes the minimap. MobileWidth is the window width below
// which MobileSize is used.
type MinimapConfig struct {
	Size        float64 `toml:"size"`
	MobileSize  float64 `toml:"mobile_size"`
	Padding     float64 `toml:"padding"`
	MobileWidth int     `toml:"mobile_width"`
}

type UIConfig struct {
	Resolution ResolutionConfig `toml:"resolution"`
	Minimap    MinimapConfig    `toml:"minimap"`
	Debug      bool             `toml:"debug"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

// ServerConfig drives the relay. DayLengthMS is how long one full day
// lasts.
type ServerConfig struct {
	Address         string `toml:"address"`
	DayLengthMS     int    `toml:"day_length_ms"`
	TimeBroadcastMS int    `toml:"time_broadcast_ms"`
	NPCBroadcastMS  int    `toml:"npc_broadcast_ms"`
	TreeCount       int    `toml:"tree_count"`
	NPCCount        int    `toml:"npc_count"`
	MapSize         int    `toml:"map_size"`
	SafeRadius      int    `toml:"safe_radius"`
	OutboxSize      int    `toml:"outbox_size"`
}

type MathConfig struct {
	Float64EqualityThreshold float64
}

type Config struct {
	Network   NetworkConfig    `toml:"network"`
	Player    PlayerConfig     `toml:"player"`
	Retry     RetryConfig      `toml:"retry"`
	Landmarks []LandmarkConfig `toml:"landmarks"`
	UI        UIConfig         `toml:"ui"`
	Logging   LoggingConfig    `toml:"logging"`
	Server    ServerConfig     `toml:"server"`
	Math      MathConfig
}

func DefaultConfig() *Config {
	return &Config{
		Network: NetworkConfig{
			URL:        "ws://localhost:4242/ws",
			Codec:      "json",
			InboxSize:  1024,
			OutboxSize: 256,
		},
		Player: PlayerConfig{
			Nickname:      "Player",
			Skin:          "skin_fox",
			Speed:         200,
			ReportEpsilon: 0.1,
		},
		Retry: RetryConfig{
			Attempts:   5,
			IntervalMS: 500,
		},
		Landmarks: []LandmarkConfig{
			{Name: "guestbook", X: 300, Y: -50, Near: 70, Far: 120, DwellMS: 2000},
		},
		UI: UIConfig{
			Resolution: ResolutionConfig{X: 960, Y: 640},
			Minimap: MinimapConfig{
				Size:        150,
				MobileSize:  100,
				Padding:     10,
				MobileWidth: 768,
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Server: ServerConfig{
			Address:         "localhost:4242",
			DayLengthMS:     20 * 60 * 1000,
			TimeBroadcastMS: 5000,
			NPCBroadcastMS:  500,
			TreeCount:       60,
			NPCCount:        4,
			MapSize:         900,
			SafeRadius:      150,
			OutboxSize:      1024,
		},
		Math: MathConfig{
			Float64EqualityThreshold: 1e-9,
		},
	}
}

// ReadTOML overlays fileName on the defaults. A missing file yields the
// defaults unchanged.
func ReadTOML(fileName string) (*Config, error) {
	config := DefaultConfig()
	file, err := os.ReadFile(fileName)
	if errors.Is(err, fs.ErrNotExist) {
		return config, nil
	}
	if err != nil {
		return nil, err
	}

	// Array tables append on decode, so landmarks start empty and fall back
	// to the defaults only when the file names none.
	landmarks := config.Landmarks
	config.Landmarks = nil
	if err := toml.Unmarshal(file, config); err != nil {
		return nil, err
	}
	if len(config.Landmarks) == 0 {
		config.Landmarks = landmarks
	}
	return config, nil
}

func AlmostEqual(a, b, threshold float64) bool {
	return math.Abs(a-b) <= threshold
}
