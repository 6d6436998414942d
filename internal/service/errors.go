package service

import (
	"errors"
)

const (
	BadRequest          = 400
	Unauthorized        = 401
	NotFound            = 404
	InternalServerError = 500
)

var (
	ErrParamInvalid        = errors.New("参数错误")
	ErrUserNotFound        = errors.New("用户不存在")
	ErrTargetUserInvalid   = errors.New("目标用户无效")
	ErrConversationTarget  = errors.New("会话目标不明确")
	ErrConversationMissing = errors.New("会话不存在")
	ErrRoomNotFound        = errors.New("群聊不存在")
	ErrRoomNameEmpty       = errors.New("群名称不能为空")
	ErrNotInRoom           = errors.New("不是群成员")
	ErrMemberNotFound      = errors.New("成员不存在")
	ErrMemberExist         = errors.New("成员已在群内")
	ErrMessageNotFound     = errors.New("消息不存在")
	ErrMessageEmpty        = errors.New("消息内容不能为空")
	ErrMessageDeleted      = errors.New("消息已删除")
	ErrNotMessageSender    = errors.New("只能操作自己的消息")
	ErrEditWindowElapsed   = errors.New("消息已超过可编辑时限")
	ErrEmojiEmpty          = errors.New("表态符号不能为空")
	UnauthorizedError      = errors.New("权限不足")
	UnExpectedError        = errors.New("系统异常，请稍后重试")
)

var ErrorMap = map[error]int{
	ErrParamInvalid:        BadRequest,
	ErrUserNotFound:        NotFound,
	ErrTargetUserInvalid:   BadRequest,
	ErrConversationTarget:  BadRequest,
	ErrConversationMissing: NotFound,
	ErrRoomNotFound:        NotFound,
	ErrRoomNameEmpty:       BadRequest,
	ErrNotInRoom:           BadRequest,
	ErrMemberNotFound:      NotFound,
	ErrMemberExist:         BadRequest,
	ErrMessageNotFound:     NotFound,
	ErrMessageEmpty:        BadRequest,
	ErrMessageDeleted:      BadRequest,
	ErrNotMessageSender:    Unauthorized,
	ErrEditWindowElapsed:   BadRequest,
	ErrEmojiEmpty:          BadRequest,
	UnauthorizedError:      Unauthorized,
	UnExpectedError:        InternalServerError,
}
