package repository

import (
	"post_audit_service/internal/domain/post/model"
	"post_audit_service/internal/domain/post/moderation"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PageQuery 分页查询条件
type PageQuery struct {
	Status   moderation.StatusSelector
	Keyword  string
	AuthorID string
	Offset   int
	Limit    int
}

type PostRepository interface {
	Create(post *model.Post) error
	GetByID(id string) (*model.Post, error)
	// GetByIDForUpdate 行锁读取，必须在 Transaction 内调用
	GetByIDForUpdate(id string) (*model.Post, error)
	Update(id string, fields map[string]interface{}) (int64, error)
	Delete(id string) (int64, error)
	FindPage(q PageQuery) ([]model.Post, int64, error)
	// Transaction 在单个数据库事务内执行 fn，传入绑定事务的仓库
	Transaction(fn func(txRepo PostRepository) error) error

	CreateAuditRecord(rec *model.AuditRecord) error
	GetAuditRecords(postID string, offset, limit int) ([]model.AuditRecord, int64, error)

	CreateFavorite(userID, postID string) error
	DeleteFavorite(userID, postID string) error
	HasFavorited(userID, postID string) (bool, error)
}

type postRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

// --- Post ---

func (r *postRepository) Create(post *model.Post) error {
	return r.db.Create(post).Error
}

func (r *postRepository) GetByID(id string) (*model.Post, error) {
	var post model.Post
	if err := r.db.Preload("Author").Where("id = ?", id).First(&post).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

// GetByIDForUpdate 审核走读-改-写，SELECT ... FOR UPDATE 让并发决定串行化
func (r *postRepository) GetByIDForUpdate(id string) (*model.Post, error) {
	var post model.Post
	err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).First(&post).Error
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) Update(id string, fields map[string]interface{}) (int64, error) {
	result := r.db.Model(&model.Post{}).Where("id = ?", id).Updates(fields)
	return result.RowsAffected, result.Error
}

func (r *postRepository) Delete(id string) (int64, error) {
	result := r.db.Where("id = ?", id).Delete(&model.Post{})
	return result.RowsAffected, result.Error
}

// FindPage 分页查询
// 关键词搜索是多个完全限定过滤条件的 OR 并集，每个条件已各自与状态筛选合取
func (r *postRepository) FindPage(q PageQuery) ([]model.Post, int64, error) {
	var posts []model.Post
	var total int64

	query := r.db.Model(&model.Post{})

	if q.Keyword != "" {
		// 作者名匹配需要关联 users
		query = query.Joins("LEFT JOIN users ON users.id = posts.author_id")

		clauses := moderation.SearchClauses(q.Keyword, q.Status)
		union := r.db.Where(clauses[0].Expr, clauses[0].Args...)
		for _, c := range clauses[1:] {
			union = union.Or(c.Expr, c.Args...)
		}
		query = query.Where(union)
	} else if c, ok := moderation.StatusClause(q.Status); ok {
		query = query.Where(c.Expr, c.Args...)
	}

	if q.AuthorID != "" {
		query = query.Where("posts.author_id = ?", q.AuthorID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Preload("Author").
		Order("posts.created_at desc").
		Offset(q.Offset).Limit(q.Limit).
		Find(&posts).Error
	if err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

func (r *postRepository) Transaction(fn func(txRepo PostRepository) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(&postRepository{db: tx})
	})
}

// --- Audit trail ---

func (r *postRepository) CreateAuditRecord(rec *model.AuditRecord) error {
	return r.db.Create(rec).Error
}

func (r *postRepository) GetAuditRecords(postID string, offset, limit int) ([]model.AuditRecord, int64, error) {
	var records []model.AuditRecord
	var total int64

	query := r.db.Model(&model.AuditRecord{}).Where("post_id = ?", postID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.Order("created_at desc").Offset(offset).Limit(limit).Find(&records).Error; err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

// --- Favorite ---

func (r *postRepository) CreateFavorite(userID, postID string) error {
	return r.db.Create(&model.Favorite{UserID: userID, PostID: postID}).Error
}

func (r *postRepository) DeleteFavorite(userID, postID string) error {
	return r.db.Where("user_id = ? AND post_id = ?", userID, postID).Delete(&model.Favorite{}).Error
}

func (r *postRepository) HasFavorited(userID, postID string) (bool, error) {
	var count int64
	err := r.db.Model(&model.Favorite{}).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Count(&count).Error
	return count > 0, err
}
