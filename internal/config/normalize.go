package config

import (
	"fmt"
	"strings"
)

// normalize expands and absolutizes every path field and trims string values so
// validation and the rest of the daemon only ever see canonical paths.
func (c *Config) normalize() error {
	var err error
	if c.Logging.Dir, err = expandPath(strings.TrimSpace(c.Logging.Dir)); err != nil {
		return fmt.Errorf("logging.dir: %w", err)
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))

	if trimmed := strings.TrimSpace(c.History.Path); trimmed != "" {
		if c.History.Path, err = expandPath(trimmed); err != nil {
			return fmt.Errorf("history.path: %w", err)
		}
	} else {
		c.History.Path = ""
	}

	for i := range c.Folders {
		folder := &c.Folders[i]
		folder.Name = strings.TrimSpace(folder.Name)
		folder.Printer = strings.TrimSpace(folder.Printer)

		if folder.WatchPath, err = expandPath(strings.TrimSpace(folder.WatchPath)); err != nil {
			return fmt.Errorf("folders[%d].watch_path: %w", i, err)
		}
		if folder.SuccessFolder, err = expandPath(strings.TrimSpace(folder.SuccessFolder)); err != nil {
			return fmt.Errorf("folders[%d].success_folder: %w", i, err)
		}
		if folder.ErrorFolder, err = expandPath(strings.TrimSpace(folder.ErrorFolder)); err != nil {
			return fmt.Errorf("folders[%d].error_folder: %w", i, err)
		}
	}
	return nil
}
