package controller

import (
	"log"

	"github.com/DODOEX/huffcodec/utils/config"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/v2"
	"github.com/valyala/fasthttp"
)

func newConfig(value map[string]any) *config.Conf {
	k := koanf.New(".")
	conf := &config.Conf{Koanf: k}
	if err := conf.Load(confmap.Provider(value, "."), nil); err != nil {
		log.Fatal(err)
	}
	return conf
}

func newRequestCtx(method, uri string, body []byte, userValues map[string]any) *fasthttp.RequestCtx {
	var req fasthttp.Request
	req.Header.SetMethod(method)
	req.SetRequestURI(uri)
	req.SetBody(body)

	ctx := &fasthttp.RequestCtx{}
	ctx.Init(&req, nil, nil)
	for k, v := range userValues {
		ctx.SetUserValue(k, v)
	}
	return ctx
}
