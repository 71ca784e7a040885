package config

import (
	_ "github.com/thermolink/thermolink/internal/ruleformat/mdrules"
	_ "github.com/thermolink/thermolink/internal/ruleformat/txtrules"
	_ "github.com/thermolink/thermolink/internal/ruleformat/yamlrules"
)
