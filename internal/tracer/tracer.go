// Package tracer configures the process-wide opentracing.Tracer.
package tracer

import (
	"log"
	"os"
	"reflect"
	"strconv"

	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"
	"github.com/uber/jaeger-client-go"
	jaegercfg "github.com/uber/jaeger-client-go/config"
)

// Init configures a Jaeger tracer from JAEGER_* environment variables and
// registers it as the global tracer. It should only be called once, from
// main. Setting JAEGER_DISABLED=true skips tracing entirely, leaving the
// opentracing no-op tracer in place.
func Init(svcName, version string) error {
	if disabled, _ := strconv.ParseBool(os.Getenv("JAEGER_DISABLED")); disabled {
		return nil
	}

	t, err := configureJaeger(svcName, version)
	if err != nil {
		return errors.Wrap(err, "failed to configure Jaeger tracer")
	}
	log.Printf("INFO: using Jaeger tracer")
	opentracing.SetGlobalTracer(t)
	return nil
}

func configureJaeger(svcName, version string) (opentracing.Tracer, error) {
	cfg, err := jaegercfg.FromEnv()
	if err != nil {
		return nil, err
	}
	cfg.ServiceName = svcName
	cfg.Tags = append(cfg.Tags, opentracing.Tag{Key: "service.version", Value: version})

	if reflect.DeepEqual(cfg.Sampler, &jaegercfg.SamplerConfig{}) {
		cfg.Sampler.Type = jaeger.SamplerTypeConst
		cfg.Sampler.Param = 1
	}

	t, _, err := cfg.NewTracer(jaegercfg.Logger(&jaegerLogger{}))
	if err != nil {
		return nil, err
	}
	return t, nil
}

type jaegerLogger struct{}

func (l *jaegerLogger) Error(msg string) {
	log.Printf("ERROR: %s", msg)
}

func (l *jaegerLogger) Infof(msg string, args ...interface{}) {
	log.Printf(msg, args...)
}
