package core

import "errors"

// DomainError 是领域层的统一错误类型。
//
// 设计原则：
//   - 所有领域层错误都使用此类型
//   - 提供错误代码（Code）和消息（Message）
//   - 支持错误检查函数（IsXXX），对 fmt.Errorf("%w") 包装后的错误同样有效
//
// 错误分类：
//   - CONFIGURATION：度量未知、K <= 0、构建索引时物品为空，调用方修正参数即可
//   - NO_PROFILE：用户没有可用的交互历史，调用方可降级（例如热门列表）
//   - INVALID_TYPE：调用方传入的用户 ID 不是整数，在任何计算之前拒绝
type DomainError struct {
	Code    string // 错误代码（如 "CONFIGURATION", "NO_PROFILE"）
	Message string // 错误消息
	Module  string // 模块名称（如 "feature", "recall", "service"）
}

func (e *DomainError) Error() string {
	return e.Message
}

// IsDomainError 检查错误是否为 DomainError 类型
func IsDomainError(err error) bool {
	return GetDomainError(err) != nil
}

// GetDomainError 获取 DomainError，如果不是则返回 nil
func GetDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return nil
}

// NewDomainError 创建新的领域错误
func NewDomainError(module, code, message string) *DomainError {
	return &DomainError{
		Module:  module,
		Code:    code,
		Message: message,
	}
}

// 错误代码常量
const (
	ErrorCodeNotFound      = "NOT_FOUND"      // 资源不存在
	ErrorCodeNotSupported  = "NOT_SUPPORTED"  // 操作不支持
	ErrorCodeUnavailable   = "UNAVAILABLE"    // 服务不可用
	ErrorCodeInvalidInput  = "INVALID_INPUT"  // 输入无效
	ErrorCodeInternalError = "INTERNAL_ERROR" // 内部错误

	ErrorCodeConfiguration = "CONFIGURATION" // 配置错误（度量、K、空目录）
	ErrorCodeNoProfile     = "NO_PROFILE"    // 用户无可用画像
	ErrorCodeInvalidType   = "INVALID_TYPE"  // 输入类型错误
)

// 模块名称常量
const (
	ModuleStore   = "store"   // 存储模块
	ModuleFeature = "feature" // 特征模块
	ModuleRecall  = "recall"  // 召回模块
	ModuleService = "service" // 服务模块
	ModuleDataset = "dataset" // 数据加载模块
)

// NewConfigurationError 创建配置错误。
func NewConfigurationError(module, message string) *DomainError {
	return NewDomainError(module, ErrorCodeConfiguration, message)
}

// NewNoProfileError 创建"无画像"错误。
func NewNoProfileError(module, message string) *DomainError {
	return NewDomainError(module, ErrorCodeNoProfile, message)
}

// NewTypeInputError 创建输入类型错误。
func NewTypeInputError(module, message string) *DomainError {
	return NewDomainError(module, ErrorCodeInvalidType, message)
}

func hasCode(err error, code string) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == code
	}
	return false
}

// IsNotFound 检查错误是否为 NOT_FOUND
func IsNotFound(err error) bool { return hasCode(err, ErrorCodeNotFound) }

// IsNotSupported 检查错误是否为 NOT_SUPPORTED
func IsNotSupported(err error) bool { return hasCode(err, ErrorCodeNotSupported) }

// IsUnavailable 检查错误是否为 UNAVAILABLE
func IsUnavailable(err error) bool { return hasCode(err, ErrorCodeUnavailable) }

// IsInvalidInput 检查错误是否为 INVALID_INPUT
func IsInvalidInput(err error) bool { return hasCode(err, ErrorCodeInvalidInput) }

// IsConfigurationError 检查错误是否为 CONFIGURATION
func IsConfigurationError(err error) bool { return hasCode(err, ErrorCodeConfiguration) }

// IsNoProfile 检查错误是否为 NO_PROFILE
func IsNoProfile(err error) bool { return hasCode(err, ErrorCodeNoProfile) }

// IsTypeInputError 检查错误是否为 INVALID_TYPE
func IsTypeInputError(err error) bool { return hasCode(err, ErrorCodeInvalidType) }
