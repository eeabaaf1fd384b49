package cfg

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"dfwatch/internal/domain/consts"
	"dfwatch/internal/models"

	"github.com/spf13/viper"
)

// Load reads and validates the TOML config file. An empty path falls
// back to dfwatch.toml in the working directory, then in
// $HOME/.config/dfwatch.
func Load(path string) (*models.Settings, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("dfwatch")
		v.SetConfigType("toml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "dfwatch"))
		}
	}

	v.SetDefault("refresh_mins", consts.DefaultRefreshMins)
	v.SetDefault("use_feed", false)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	return validate(v)
}

// validate turns raw viper values into an immutable Settings struct,
// failing fast on anything the poll loop can't work with.
func validate(v *viper.Viper) (*models.Settings, error) {
	browser, err := models.ParseBrowser(v.GetString("browser"))
	if err != nil {
		return nil, err
	}

	refresh := v.GetInt("refresh_mins")
	if refresh <= 0 {
		return nil, fmt.Errorf("refresh_mins must be a positive integer, got %d", refresh)
	}

	videoDir := v.GetString("video_dir")
	if videoDir == "" {
		return nil, fmt.Errorf("video_dir is required")
	}
	if err := os.MkdirAll(videoDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create video directory %q: %w", videoDir, err)
	}

	trackerFile := v.GetString("tracker_file")
	if trackerFile == "" {
		trackerFile = filepath.Join(videoDir, consts.TrackerFile)
	}

	s := &models.Settings{
		Browser:     browser,
		RefreshMins: refresh,
		VideoDir:    videoDir,
		TrackerFile: trackerFile,
		UseFeed:     v.GetBool("use_feed"),
		Collection:  strings.Trim(v.GetString("collection"), "/"),
	}

	if v.IsSet("notify") {
		n := &models.NotifyConfig{
			AccountSID: v.GetString("notify.account_sid"),
			AuthToken:  v.GetString("notify.auth_token"),
			From:       v.GetString("notify.from"),
			To:         v.GetString("notify.to"),
		}
		if n.AccountSID == "" || n.AuthToken == "" || n.From == "" || n.To == "" {
			return nil, fmt.Errorf("notify block requires account_sid, auth_token, from and to")
		}
		s.Notify = n
	}

	return s, nil
}
