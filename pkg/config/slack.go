package config

// SlackConfig enables result notifications to a Slack channel.
// Notifications are disabled when either field is empty.
type SlackConfig struct {
	// Channel ID to post results to.
	Channel string `yaml:"channel,omitempty"`

	// Environment variable holding the bot token.
	TokenEnv string `yaml:"token_env,omitempty"`
}
