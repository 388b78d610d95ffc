package config

import (
	"fmt"
	"strconv"
	"time"

	"github.com/DODOEX/huffcodec/internal/common"
	"github.com/DODOEX/huffcodec/utils/helpers"
	"github.com/knadh/koanf/v2"
)

type Conf struct {
	*koanf.Koanf
}

// LoadBatchTargets indexes the target list at path by name under "batch.target.<name>"
func LoadBatchTargets(k *Conf, path string) ([]common.BatchTarget, error) {
	if !k.Exists(path) {
		return nil, nil
	}

	var targets []common.BatchTarget
	if err := k.Unmarshal(path, &targets); err != nil {
		return nil, fmt.Errorf("unmarshal batch targets: %w", err)
	}

	for i := 0; i < len(targets); i++ {
		if targets[i].Name == "" {
			targets[i].Name = helpers.Concat("target-", strconv.Itoa(i))
		}
		k.Set(helpers.Concat("batch.target.", targets[i].Name), targets[i])
	}

	return targets, nil
}

// lookup returns the first default when path is unset, otherwise get(path).
func lookup[T any](c *Conf, path string, get func(string) T, defaultValues []T) T {
	if !c.Koanf.Exists(path) && len(defaultValues) > 0 {
		return defaultValues[0]
	}
	return get(path)
}

func (c *Conf) Get(path string, defaultValues ...any) any {
	return lookup(c, path, c.Koanf.Get, defaultValues)
}

func (c *Conf) Bool(path string, defaultValues ...bool) bool {
	return lookup(c, path, c.Koanf.Bool, defaultValues)
}

func (c *Conf) String(path string, defaultValues ...string) string {
	return lookup(c, path, c.Koanf.String, defaultValues)
}

func (c *Conf) Int(path string, defaultValues ...int) int {
	return lookup(c, path, c.Koanf.Int, defaultValues)
}

func (c *Conf) Duration(path string, defaultValues ...time.Duration) time.Duration {
	return lookup(c, path, c.Koanf.Duration, defaultValues)
}
