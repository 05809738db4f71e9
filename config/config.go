// Package config holds the service configuration, loaded from the
// environment through frame.
package config

import (
	"github.com/pitabwire/frame/config"
)

// TTSConfig holds configuration for the synthesis service.
type TTSConfig struct {
	config.ConfigurationDefault
	DefaultVoice         string  `envDefault:"female_calm" env:"DEFAULT_VOICE"`
	VoicesPath           string  `envDefault:""            env:"VOICES_PATH"`
	MaxResidentModels    int     `envDefault:"2"           env:"MAX_RESIDENT_MODELS"`
	MaxTextLength        int     `envDefault:"5000"        env:"MAX_TEXT_LENGTH"`
	MinSpeed             float64 `envDefault:"0.5"         env:"MIN_SPEED"`
	MaxSpeed             float64 `envDefault:"2.0"         env:"MAX_SPEED"`
	WarmUpModel          bool    `envDefault:"true"        env:"WARM_UP_MODEL"`
	TTSServerBinary      string  `envDefault:"tts-server"  env:"TTS_SERVER_BINARY"`
	ModelStartTimeoutSec int     `envDefault:"120"         env:"MODEL_START_TIMEOUT_SEC"`
	AudioWorkDir         string  `envDefault:""            env:"AUDIO_WORK_DIR"`
}
