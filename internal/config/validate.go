package config

import (
	"errors"
	"fmt"
)

var validLevels = map[string]struct{}{
	"debug": {},
	"info":  {},
	"warn":  {},
	"error": {},
}

var validFormats = map[string]struct{}{
	"auto":    {},
	"console": {},
	"json":    {},
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateWorkflow(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return c.validateFolders()
}

func (c *Config) validateWorkflow() error {
	if c.Workflow.PollInterval <= 0 {
		return errors.New("workflow.poll_interval must be positive (seconds)")
	}
	if c.Workflow.DispatchTimeout <= 0 {
		return errors.New("workflow.dispatch_timeout must be positive (seconds)")
	}
	return nil
}

func (c *Config) validateLogging() error {
	if _, ok := validLevels[c.Logging.Level]; !ok {
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	if _, ok := validFormats[c.Logging.Format]; !ok {
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	if c.Logging.Dir == "" {
		return errors.New("logging.dir must be set")
	}
	return nil
}

func (c *Config) validateFolders() error {
	if len(c.Folders) == 0 {
		return errors.New("at least one [[folders]] entry must be configured")
	}

	names := make(map[string]int, len(c.Folders))
	paths := make(map[string]string, len(c.Folders)*3)

	for i, folder := range c.Folders {
		if folder.Name == "" {
			return fmt.Errorf("folders[%d].name must be set", i)
		}
		if prev, ok := names[folder.Name]; ok {
			return fmt.Errorf("folders[%d].name %q duplicates folders[%d]", i, folder.Name, prev)
		}
		names[folder.Name] = i

		if folder.WatchPath == "" {
			return fmt.Errorf("folders[%d].watch_path must be set", i)
		}
		if folder.SuccessFolder == "" {
			return fmt.Errorf("folders[%d].success_folder must be set", i)
		}
		if folder.ErrorFolder == "" {
			return fmt.Errorf("folders[%d].error_folder must be set", i)
		}
		if folder.SuccessFolder == folder.ErrorFolder {
			return fmt.Errorf("folders[%d]: success_folder and error_folder must differ", i)
		}
		if folder.SuccessFolder == folder.WatchPath || folder.ErrorFolder == folder.WatchPath {
			return fmt.Errorf("folders[%d]: success_folder and error_folder must differ from watch_path", i)
		}

		// Workers never share directories; a shared path would break per-folder
		// ownership and risk double-processing.
		for key, value := range map[string]string{
			"watch_path":     folder.WatchPath,
			"success_folder": folder.SuccessFolder,
			"error_folder":   folder.ErrorFolder,
		} {
			if owner, ok := paths[value]; ok {
				return fmt.Errorf("folders[%d].%s %q already used by %s", i, key, value, owner)
			}
			paths[value] = fmt.Sprintf("folders[%d].%s", i, key)
		}
	}
	return nil
}
