package appconfig

import (
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

//decode converts raw viper value (e.g. map[string]interface{} from yaml or strings from env) into result
func decode(input interface{}, result interface{}) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           result,
	})
	if err != nil {
		return err
	}

	return decoder.Decode(input)
}

//leafSettings collects prefix.<key> values one by one: viper doesn't merge defaults into nested maps
//of a config file section
func leafSettings(prefix string, keys ...string) map[string]interface{} {
	settings := make(map[string]interface{}, len(keys))
	for _, key := range keys {
		if value := viper.Get(prefix + "." + key); value != nil {
			settings[key] = value
		}
	}

	return settings
}
