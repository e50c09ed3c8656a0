package config

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"
	"time"
)

type stubResult struct {
	value string
	err   error
}

type stubProvider struct {
	responses map[string]stubResult
}

func (s *stubProvider) set(name, value string, err error) {
	if s.responses == nil {
		s.responses = make(map[string]stubResult)
	}
	s.responses[name] = stubResult{value: value, err: err}
}

func (s *stubProvider) Get(_ context.Context, name string) (string, error) {
	result, ok := s.responses[name]
	if !ok {
		return "", fmt.Errorf("key '%s' does not exist", name)
	}
	return result.value, result.err
}

func assertErrorMessage(t *testing.T, err error, want string) {
	t.Helper()
	if want == "" {
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		return
	}
	if err == nil {
		t.Fatalf("expected error %q, got nil", want)
	}
	if err.Error() != want {
		t.Fatalf("expected error %q, got %q", want, err.Error())
	}
}

func TestGet(t *testing.T) {
	t.Cleanup(ResetGlobalProvider)

	tests := map[string]struct {
		key       string
		stub      func(p *stubProvider)
		expected  any
		expectErr string
	}{
		"string": {
			key:      "DEFAULT_TZ",
			stub:     func(p *stubProvider) { p.set("DEFAULT_TZ", "Europe/Madrid", nil) },
			expected: "Europe/Madrid",
		},
		"bool": {
			key:      "OTEL_ENABLED",
			stub:     func(p *stubProvider) { p.set("OTEL_ENABLED", "true", nil) },
			expected: true,
		},
		"int": {
			key:      "HTTP_PORT",
			stub:     func(p *stubProvider) { p.set("HTTP_PORT", "8080", nil) },
			expected: 8080,
		},
		"int64": {
			key:      "LIMIT",
			stub:     func(p *stubProvider) { p.set("LIMIT", "64", nil) },
			expected: int64(64),
		},
		"float64": {
			key:      "RATIO",
			stub:     func(p *stubProvider) { p.set("RATIO", "0.25", nil) },
			expected: 0.25,
		},
		"duration": {
			key:      "HTTP_SHUTDOWN_TIMEOUT",
			stub:     func(p *stubProvider) { p.set("HTTP_SHUTDOWN_TIMEOUT", "5s", nil) },
			expected: 5 * time.Second,
		},
		"string-list": {
			key:      "CORS_ORIGINS",
			stub:     func(p *stubProvider) { p.set("CORS_ORIGINS", " https://a.example, ,https://b.example ", nil) },
			expected: []string{"https://a.example", "https://b.example"},
		},
		"parse-error": {
			key:       "HTTP_PORT",
			stub:      func(p *stubProvider) { p.set("HTTP_PORT", "eighty", nil) },
			expected:  0,
			expectErr: "config: error parsing value for key 'HTTP_PORT': strconv.Atoi: parsing \"eighty\": invalid syntax",
		},
		"no-parser": {
			key:       "HTTP_PORT",
			expected:  uint(0),
			expectErr: "config: parser for type 'uint' does not exist",
		},
		"not-found": {
			key:       "HTTP_PORT",
			expected:  0,
			expectErr: "config: key 'HTTP_PORT' does not exist",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			stub := &stubProvider{}
			if tt.stub != nil {
				tt.stub(stub)
			}
			SetGlobalProvider(stub)
			ctx := context.Background()

			var (
				result any
				err    error
			)
			switch tt.expected.(type) {
			case string:
				result, err = Get[string](ctx, tt.key)
			case bool:
				result, err = Get[bool](ctx, tt.key)
			case int:
				result, err = Get[int](ctx, tt.key)
			case int64:
				result, err = Get[int64](ctx, tt.key)
			case float64:
				result, err = Get[float64](ctx, tt.key)
			case time.Duration:
				result, err = Get[time.Duration](ctx, tt.key)
			case []string:
				result, err = Get[[]string](ctx, tt.key)
			case uint:
				result, err = Get[uint](ctx, tt.key)
			}

			assertErrorMessage(t, err, tt.expectErr)
			if !reflect.DeepEqual(tt.expected, result) {
				t.Fatalf("expected result %#v, got %#v", tt.expected, result)
			}
		})
	}
}

func TestGetWithDefault(t *testing.T) {
	t.Cleanup(ResetGlobalProvider)

	stub := &stubProvider{}
	stub.set("HTTP_PORT", "9090", nil)
	stub.set("BROKEN", "not-a-number", nil)
	SetGlobalProvider(stub)
	ctx := context.Background()

	if got := GetWithDefault(ctx, "HTTP_PORT", 8080); got != 9090 {
		t.Fatalf("expected 9090, got %d", got)
	}
	if got := GetWithDefault(ctx, "MISSING", 8080); got != 8080 {
		t.Fatalf("expected default 8080, got %d", got)
	}
	if got := GetWithDefault(ctx, "BROKEN", 8080); got != 8080 {
		t.Fatalf("expected default 8080 for unparsable value, got %d", got)
	}
	if got := GetWithDefault(ctx, "HTTP_PORT", uint(1)); got != 1 {
		t.Fatalf("expected default for type without parser, got %d", got)
	}
}

type serverConfig struct {
	Port      int           `config:"HTTP_PORT" default:"8080"`
	DefaultTZ string        `config:"DEFAULT_TZ" default:"UTC"`
	Origins   []string      `config:"CORS_ORIGINS" default:"*"`
	Timeout   time.Duration `config:"HTTP_SHUTDOWN_TIMEOUT" default:"5s"`
	Untagged  string
}

type requiredConfig struct {
	Zone string `config:"REQUIRED_ZONE"`
}

type badDefaultConfig struct {
	Port int `config:"HTTP_PORT" default:"eighty"`
}

type unexportedConfig struct {
	zone string `config:"DEFAULT_TZ" default:"UTC"`
}

type unsupportedConfig struct {
	Port uint `config:"HTTP_PORT" default:"8080"`
}

func TestLoadStruct(t *testing.T) {
	t.Cleanup(ResetGlobalProvider)

	tests := map[string]struct {
		stub      func(p *stubProvider)
		load      func(ctx context.Context) (any, error)
		expected  any
		expectErr string
	}{
		"defaults": {
			load: func(ctx context.Context) (any, error) {
				cfg := serverConfig{Untagged: "kept"}
				err := LoadStruct(ctx, &cfg)
				return cfg, err
			},
			expected: serverConfig{
				Port:      8080,
				DefaultTZ: "UTC",
				Origins:   []string{"*"},
				Timeout:   5 * time.Second,
				Untagged:  "kept",
			},
		},
		"provided-values": {
			stub: func(p *stubProvider) {
				p.set("HTTP_PORT", "9000", nil)
				p.set("DEFAULT_TZ", "America/Argentina/Buenos_Aires", nil)
				p.set("CORS_ORIGINS", "https://a.example,https://b.example", nil)
				p.set("HTTP_SHUTDOWN_TIMEOUT", "250ms", nil)
			},
			load: func(ctx context.Context) (any, error) {
				var cfg serverConfig
				err := LoadStruct(ctx, &cfg)
				return cfg, err
			},
			expected: serverConfig{
				Port:      9000,
				DefaultTZ: "America/Argentina/Buenos_Aires",
				Origins:   []string{"https://a.example", "https://b.example"},
				Timeout:   250 * time.Millisecond,
			},
		},
		"required-missing": {
			load: func(ctx context.Context) (any, error) {
				var cfg requiredConfig
				err := LoadStruct(ctx, &cfg)
				return cfg, err
			},
			expected:  requiredConfig{},
			expectErr: "config: error getting value for field 'Zone': key 'REQUIRED_ZONE' does not exist",
		},
		"required-present": {
			stub: func(p *stubProvider) { p.set("REQUIRED_ZONE", "Asia/Tokyo", nil) },
			load: func(ctx context.Context) (any, error) {
				var cfg requiredConfig
				err := LoadStruct(ctx, &cfg)
				return cfg, err
			},
			expected: requiredConfig{Zone: "Asia/Tokyo"},
		},
		"bad-default": {
			load: func(ctx context.Context) (any, error) {
				var cfg badDefaultConfig
				err := LoadStruct(ctx, &cfg)
				return cfg, err
			},
			expected:  badDefaultConfig{},
			expectErr: "config: error parsing value for field 'Port': strconv.Atoi: parsing \"eighty\": invalid syntax",
		},
		"unexported": {
			load: func(ctx context.Context) (any, error) {
				var cfg unexportedConfig
				err := LoadStruct(ctx, &cfg)
				return cfg, err
			},
			expected:  unexportedConfig{},
			expectErr: "config: field 'zone' is not settable",
		},
		"unsupported-type": {
			load: func(ctx context.Context) (any, error) {
				var cfg unsupportedConfig
				err := LoadStruct(ctx, &cfg)
				return cfg, err
			},
			expected:  unsupportedConfig{},
			expectErr: "config: parser for type 'uint' does not exist",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			stub := &stubProvider{}
			if tt.stub != nil {
				tt.stub(stub)
			}
			SetGlobalProvider(stub)

			got, err := tt.load(context.Background())
			assertErrorMessage(t, err, tt.expectErr)
			if !reflect.DeepEqual(tt.expected, got) {
				t.Fatalf("expected %#v, got %#v", tt.expected, got)
			}
		})
	}
}

func TestRegisterParser(t *testing.T) {
	t.Cleanup(ResetGlobalProvider)

	type weekday time.Weekday
	RegisterParser(func(value string) (weekday, error) {
		for d := time.Sunday; d <= time.Saturday; d++ {
			if d.String() == value {
				return weekday(d), nil
			}
		}
		return 0, errors.New("unknown weekday")
	})

	stub := &stubProvider{}
	stub.set("START_DAY", "Monday", nil)
	SetGlobalProvider(stub)

	got, err := Get[weekday](context.Background(), "START_DAY")
	assertErrorMessage(t, err, "")
	if got != weekday(time.Monday) {
		t.Fatalf("expected Monday, got %v", got)
	}
}

func TestParseList(t *testing.T) {
	tests := map[string]struct {
		in   string
		want []string
	}{
		"empty":   {in: "", want: []string{}},
		"single":  {in: "*", want: []string{"*"}},
		"trimmed": {in: " a , b,,c ", want: []string{"a", "b", "c"}},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := ParseList(tt.in)
			assertErrorMessage(t, err, "")
			if !reflect.DeepEqual(tt.want, got) {
				t.Fatalf("expected %#v, got %#v", tt.want, got)
			}
		})
	}
}
