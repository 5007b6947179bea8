package service

import (
	"errors"

	"post_audit_service/internal/domain/user/model"
	"post_audit_service/internal/domain/user/repository"
	"post_audit_service/pkg/utils"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserService 用户服务接口
type UserService interface {
	Register(username, password, email string) error
	Login(username, password string) (string, error)
	GetUser(id string) (*model.User, error)
	UpdateProfile(id string, email, avatar string) (*model.User, error)
}

type userService struct {
	repo repository.UserRepository
}

// NewUserService 创建用户服务
func NewUserService(repo repository.UserRepository) UserService {
	return &userService{repo: repo}
}

// Register 注册新用户
func (s *userService) Register(username, password, email string) error {
	// 1. 用户名查重
	if _, err := s.repo.GetByUsername(username); err == nil {
		return errors.New("username already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	// 2. 密码哈希
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	user := &model.User{
		Username: username,
		Password: string(hashed),
		Email:    email,
		Role:     model.RoleUser,
	}
	return s.repo.Create(user)
}

// Login 登录，成功返回JWT Token
func (s *userService) Login(username, password string) (string, error) {
	user, err := s.repo.GetByUsername(username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", errors.New("invalid username or password")
		}
		return "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", errors.New("invalid username or password")
	}

	return utils.GenerateToken(user.ID, user.Role)
}

// GetUser 获取单个用户
func (s *userService) GetUser(id string) (*model.User, error) {
	return s.repo.GetByID(id)
}

// UpdateProfile 更新用户资料
func (s *userService) UpdateProfile(id string, email, avatar string) (*model.User, error) {
	user, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}

	if email != "" {
		user.Email = email
	}
	if avatar != "" {
		user.Avatar = avatar
	}

	if err := s.repo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}
