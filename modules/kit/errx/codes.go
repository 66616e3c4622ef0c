package errx

// 这里定义“模拟核心统一”的系统/通用错误码。
//
// 约束：
// - 这些错误码用于“系统/技术类错误”归一化（便于告警、观测、排障）
// - 领域哨兵错误（例如 村庄不存在）由 sim/entity 自行定义，不允许在 kit 里集中

const (
	// CodeInternal 表示服务内部不可预期错误（兜底）。
	CodeInternal Code = "INTERNAL_ERROR"
	// CodeUnavailable 表示持久化依赖不可用（DB/Mongo/网络异常等）。
	CodeUnavailable Code = "PERSISTENCE_UNAVAILABLE"
	// CodeTimeout 表示单个实体处理超出本 tick 的时间预算。
	CodeTimeout Code = "TIMEOUT"
	// CodeConflict 表示乐观锁版本冲突，留到下个 tick 重试。
	CodeConflict Code = "VERSION_CONFLICT"
	// CodeInvalidArgument 表示入参非法（负数时长、负资源量等），在任何状态变更前拒绝。
	CodeInvalidArgument Code = "INVALID_ARGUMENT"
	// CodeNotFound 表示引用的村庄/建筑/兵种不存在。
	CodeNotFound Code = "NOT_FOUND"
)

// 统一哨兵错误（允许 WithData/WithCause 派生新对象）。
var (
	ErrInternal        = NewSys(CodeInternal, "模拟核心内部错误")
	ErrUnavailable     = NewSys(CodeUnavailable, "持久化不可用")
	ErrTimeout         = NewSys(CodeTimeout, "实体处理超时")
	ErrConflict        = NewBiz(CodeConflict, "版本冲突")
	ErrInvalidArgument = NewBiz(CodeInvalidArgument, "入参非法")
	ErrNotFound        = NewBiz(CodeNotFound, "引用对象不存在")
)
