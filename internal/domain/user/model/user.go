package model

import (
	baseModel "post_audit_service/pkg/model"
)

// RoleUser 普通用户无角色名；moderator 角色名定义见 post/moderation 包
const RoleUser = ""

// User 用户模型
type User struct {
	baseModel.BaseModel
	Username string `gorm:"unique" json:"username"`
	Password string `json:"-"` // bcrypt 哈希，不返回给前端
	Email    string `json:"email"`
	Avatar   string `json:"avatar"`
	Role     string `gorm:"default:''" json:"role"` // admin, reviewer, 或空串
}
