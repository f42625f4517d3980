package errors

import (
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

// ErrDatabaseInternal 数据库内部错误（连接、表不存在等）
var ErrDatabaseInternal = errors.New("database internal error")

// region 错误处理工具函数

// WrapGormError 将底层数据库错误转变为业务可识别错误
// 参数说明：
//   - rawErr: 原始GORM错误
//   - notFound: 记录不存在时返回的业务错误
//
// 返回值：
//   - error: 标准化错误类型
func WrapGormError(rawErr error, notFound *Error) error {
	if rawErr == nil {
		return nil
	}

	// 已经是业务错误的直接透传
	var appErr *Error
	if errors.As(rawErr, &appErr) {
		return rawErr
	}

	// 处理预定义的GORM错误
	switch {
	case errors.Is(rawErr, gorm.ErrRecordNotFound):
		if notFound == nil {
			return NotFound("resource not found")
		}
		return notFound
	case errors.Is(rawErr, gorm.ErrDuplicatedKey):
		return ErrDuplicateEntry
	}

	// 处理MySQL驱动错误
	var mysqlErr *mysql.MySQLError
	if errors.As(rawErr, &mysqlErr) {
		switch mysqlErr.Number {
		case 1062: // 唯一性约束冲突
			return ErrDuplicateEntry
		case 1045, 1049, 1146: // 数据库连接、表不存在等错误
			return Internal(fmt.Errorf("%w: %s", ErrDatabaseInternal, mysqlErr.Message))
		}
	}

	// 兜底处理：附加原始错误信息
	return Internal(fmt.Errorf("%w: %w", ErrDatabaseInternal, rawErr))
}

// IsDuplicateError 判断是否为重复记录错误
func IsDuplicateError(err error) bool {
	if errors.Is(err, ErrDuplicateEntry) || errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == 1062
}
