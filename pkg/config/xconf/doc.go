// Package xconf 提供配置文件的加载和解析，基于 koanf 实现。
//
// # 设计理念
//
// xconf 是最小化配置加载器，只负责文件或字节数据的加载、按键覆盖和反序列化。
// 默认值与字段校验由使用方负责：先把默认值填入目标结构体，再调用 Unmarshal，
// 配置中缺失的键不会改动已有字段。
//
//	cfg := DefaultHarnessConfig()
//	c, err := xconf.New("xfluent.yaml", xconf.WithOverride("browser.driver", "headless"))
//	if err != nil {
//		return err
//	}
//	if err := c.Unmarshal("", &cfg); err != nil {
//		return err
//	}
//
// # 支持的格式
//
//   - YAML（默认，推荐）：.yaml, .yml
//   - JSON：.json
//
// # Unmarshal
//
// Unmarshal 使用 mapstructure，允许弱类型转换，"15s" 可解码为 time.Duration。
// MustUnmarshal 是包级函数，失败时 panic，适用于程序启动阶段。
//
// # 并发安全
//
// 加载完成后的 Config 可并发读取；Set 应在并发读取开始之前调用。
package xconf
