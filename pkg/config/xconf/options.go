package xconf

// Options 定义配置加载选项。
type Options struct {
	// Delim 配置键的分隔符，默认为 "."。
	Delim string

	// Tag 结构体标签名，用于 Unmarshal，默认为 "koanf"。
	Tag string

	// Overrides 加载完成后按键覆盖的值，键使用 Delim 分隔。
	Overrides map[string]any
}

// Option 定义配置选项函数类型。
type Option func(*Options)

func defaultOptions() *Options {
	return &Options{
		Delim: ".",
		Tag:   "koanf",
	}
}

// WithDelim 设置配置键分隔符，空字符串被忽略。
// 默认为 "."，例如 "browser.driver"。
func WithDelim(delim string) Option {
	return func(o *Options) {
		if delim != "" {
			o.Delim = delim
		}
	}
}

// WithTag 设置结构体标签名，空字符串被忽略。
func WithTag(tag string) Option {
	return func(o *Options) {
		if tag != "" {
			o.Tag = tag
		}
	}
}

// WithOverride 在加载完成后覆盖 key 的值，可多次使用，后者优先。
func WithOverride(key string, value any) Option {
	return func(o *Options) {
		if o.Overrides == nil {
			o.Overrides = make(map[string]any)
		}
		o.Overrides[key] = value
	}
}
