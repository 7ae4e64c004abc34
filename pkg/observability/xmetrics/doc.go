// Package xmetrics 提供统一的观测接口与 OpenTelemetry 实现。
//
// 调用方通过 [Start] 开始一次观测跨度，结束时调用 [Span.End]：
//
//	ctx, span := xmetrics.Start(ctx, observer, xmetrics.SpanOptions{
//		Component: "xflake",
//		Operation: "generate",
//		Labels:    []xmetrics.Attr{xmetrics.String("variant", "53")},
//	})
//	defer func() { span.End(xmetrics.Result{Err: err}) }()
//
// 离散事件（如锁竞争）通过 [RecordEvent] 记录，Observer 未实现 [EventRecorder] 时忽略。
//
// # OTel 指标
//
//   - xflake.operation.total：操作次数，属性 component/operation/status 与 Labels
//   - xflake.operation.duration：操作耗时（秒），属性同上
//   - xflake.event.total：事件次数，属性 component/event 与事件属性
//
// Labels 会进入指标属性，只应放入低基数的值；Attrs 仅附加到 trace span。
package xmetrics
