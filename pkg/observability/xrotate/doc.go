// Package xrotate 提供日志文件轮转，作为 xlog 的文件输出目标。
//
// [NewLumberjack] 基于 lumberjack v2 按大小轮转。默认值面向测试运行日志：
// 单文件 100MB，保留 5 个备份、14 天，不压缩。
//
// lumberjack 以 0600 权限创建日志文件，父目录不存在时以 0750 创建。
package xrotate
