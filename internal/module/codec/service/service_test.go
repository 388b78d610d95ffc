package service

import (
	"log"

	"github.com/DODOEX/huffcodec/utils/config"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/v2"
)

func newConfig(value map[string]any) *config.Conf {
	k := koanf.New(".")
	conf := &config.Conf{Koanf: k}
	if err := conf.Load(confmap.Provider(value, "."), nil); err != nil {
		log.Fatal(err)
	}
	return conf
}
