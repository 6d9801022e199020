// mastoctl is a small command line front end for the masto library. It
// registers apps, logs in, toots, reads timelines and can watch the home
// timeline, persisting credentials in the same files the library reads.
package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/time/rate"

	masto "github.com/mastokit/masto"
	"github.com/mastokit/masto/pkg/types"
)

var (
	cfgFile string
	logger  zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "mastoctl",
	Short: "Talk to a Mastodon instance from the command line",
	Long: `mastoctl registers apps, logs in and toots against any Mastodon
instance. App and user credentials are persisted to files that both
mastoctl and the masto library read back.`,
	PersistentPreRunE: initConfig,
	SilenceUsage:      true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./mastoctl.yaml)")
	rootCmd.PersistentFlags().Bool("debug", false, "trace every request and response")

	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(tootCmd)
	rootCmd.AddCommand(timelineCmd)
	rootCmd.AddCommand(watchCmd)
}

func initConfig(cmd *cobra.Command, args []string) error {
	viper.SetDefault("server", masto.DefaultServer)
	viper.SetDefault("client_file", "clientcred.txt")
	viper.SetDefault("token_file", "usercred.txt")
	viper.SetDefault("ratelimit_method", masto.RatelimitWait)
	viper.SetDefault("ratelimit_pace_factor", 0.9)

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("mastoctl")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(home)
		}
	}
	viper.SetEnvPrefix("MASTOCTL")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		// A config file is optional; flags, env and defaults suffice.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}

	level := zerolog.InfoLevel
	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		level = zerolog.DebugLevel
	}
	logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()

	return nil
}

// newClient builds a session from the persisted credential files.
func newClient(cmd *cobra.Command) (*masto.Client, error) {
	debug, _ := cmd.Flags().GetBool("debug")
	return masto.NewClient(&masto.Config{
		Server:              viper.GetString("server"),
		ClientID:            viper.GetString("client_file"),
		AccessToken:         viper.GetString("token_file"),
		RatelimitMethod:     viper.GetString("ratelimit_method"),
		RatelimitPaceFactor: viper.GetFloat64("ratelimit_pace_factor"),
		DebugRequests:       debug,
		Logger:              logger,
	})
}

var registerCmd = &cobra.Command{
	Use:   "register <client-name>",
	Short: "Register a new app on the instance",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		scopes, _ := cmd.Flags().GetStringSlice("scopes")

		clientID, _, err := masto.RegisterApp(cmd.Context(), &masto.AppRegistration{
			Server:     viper.GetString("server"),
			ClientName: args[0],
			Scopes:     scopes,
			ToFile:     viper.GetString("client_file"),
		})
		if err != nil {
			return err
		}

		logger.Info().
			Str("client_id", clientID).
			Str("file", viper.GetString("client_file")).
			Msg("app registered")
		return nil
	},
}

var loginCmd = &cobra.Command{
	Use:   "login <email>",
	Short: "Log in with the password grant and persist the access token",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		password, _ := cmd.Flags().GetString("password")
		if password == "" {
			return fmt.Errorf("--password is required")
		}
		scopes, _ := cmd.Flags().GetStringSlice("scopes")

		client, err := masto.NewClient(&masto.Config{
			Server:        viper.GetString("server"),
			ClientID:      viper.GetString("client_file"),
			DebugRequests: mustBool(cmd, "debug"),
			Logger:        logger,
		})
		if err != nil {
			return err
		}

		if _, err := client.LogIn(cmd.Context(), args[0], password, scopes, viper.GetString("token_file")); err != nil {
			return err
		}

		logger.Info().Str("file", viper.GetString("token_file")).Msg("logged in")
		return nil
	},
}

var tootCmd = &cobra.Command{
	Use:   "toot <text>",
	Short: "Post a status",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient(cmd)
		if err != nil {
			return err
		}

		text := args[0]
		var opts *masto.StatusPostOptions
		if mediaPath, _ := cmd.Flags().GetString("media"); mediaPath != "" {
			attachment, err := client.MediaPost(cmd.Context(), mediaPath)
			if err != nil {
				return err
			}
			opts = &masto.StatusPostOptions{MediaIDs: []string{attachment.ID}}
		}

		status, err := client.StatusPost(cmd.Context(), text, opts)
		if err != nil {
			return err
		}

		logger.Info().Str("id", status.ID).Str("url", status.URL).Msg("tooted")
		return nil
	},
}

var timelineCmd = &cobra.Command{
	Use:   "timeline [home|mentions|public|tag/<hashtag>]",
	Short: "Print a timeline",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient(cmd)
		if err != nil {
			return err
		}

		name := "home"
		if len(args) > 0 {
			name = args[0]
		}
		limit, _ := cmd.Flags().GetInt("limit")

		statuses, err := client.Timeline(cmd.Context(), name, &types.RangeOptions{Limit: limit})
		if err != nil {
			return err
		}

		for _, status := range statuses {
			printStatus(status)
		}
		return nil
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Poll the home timeline and print new statuses as they arrive",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient(cmd)
		if err != nil {
			return err
		}

		interval, _ := cmd.Flags().GetDuration("interval")

		// Cap polling locally on top of the library's rate limiting so an
		// aggressive --interval never hammers the instance.
		limiter := rate.NewLimiter(rate.Every(interval), 1)

		sinceID := ""
		for {
			if err := limiter.Wait(cmd.Context()); err != nil {
				return err
			}

			opts := &types.RangeOptions{SinceID: sinceID}
			statuses, err := client.TimelineHome(cmd.Context(), opts)
			if err != nil {
				return err
			}

			// Most recent first; print oldest first and remember the newest.
			for i := len(statuses) - 1; i >= 0; i-- {
				printStatus(statuses[i])
			}
			if len(statuses) > 0 {
				sinceID = statuses[0].ID
			}
		}
	},
}

func init() {
	registerCmd.Flags().StringSlice("scopes", nil, "scopes to request (default read,write,follow)")
	loginCmd.Flags().String("password", "", "account password")
	loginCmd.Flags().StringSlice("scopes", nil, "scopes to request (default read,write,follow)")
	tootCmd.Flags().String("media", "", "attach a media file")
	timelineCmd.Flags().Int("limit", 20, "number of statuses to fetch")
	watchCmd.Flags().Duration("interval", 30*time.Second, "minimum time between polls")
}

func mustBool(cmd *cobra.Command, name string) bool {
	v, _ := cmd.Flags().GetBool(name)
	return v
}

func printStatus(status types.Status) {
	acct := status.Account.Acct
	content := strings.TrimSpace(stripTags(status.Content))
	fmt.Printf("%s  @%s\n%s\n\n", status.CreatedAt.Local().Format(time.RFC822), acct, content)
}

// stripTags removes HTML tags from status content for terminal display.
func stripTags(s string) string {
	var b strings.Builder
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}
	return b.String()
}
