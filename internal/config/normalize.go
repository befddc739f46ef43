package config

import "strings"

func (c *Config) normalize() error {
	var err error

	for _, field := range []*string{&c.Paths.Root, &c.Paths.OutputDir, &c.Paths.StateDir, &c.History.Path} {
		trimmed := strings.TrimSpace(*field)
		if trimmed == "" {
			*field = ""
			continue
		}
		*field, err = expandPath(trimmed)
		if err != nil {
			return err
		}
	}

	c.Languages.Check = strings.ToLower(strings.TrimSpace(c.Languages.Check))
	c.Languages.Set = strings.ToLower(strings.TrimSpace(c.Languages.Set))
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))

	return nil
}
