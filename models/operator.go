package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/sahelfocus/loadtrack_backend/config"
	"bitbucket.org/sahelfocus/loadtrack_backend/utils"
)

// Operator is a projection of the external auth service's account record: the
// only fields this core consumes are role and platform assignment. Password
// and session handling live with the collaborator, not here.
type Operator struct {
	ID                 int                `gorm:"primary_key" json:"id"`
	Username           string             `gorm:"size:100;not null;unique" json:"username" binding:"required"`
	Name               string             `gorm:"size:100;not null" json:"name" binding:"required"`
	Role               OperatorRole       `gorm:"type:enum('ADMIN', 'SUPERVISOR', 'OPERATOR');default:OPERATOR" json:"role"`
	PlatformAssignment PlatformAssignment `gorm:"type:enum('BIG_BAG', '50KG', 'BOTH');default:BOTH" json:"platform_assignment"`
	IsActive           *bool              `gorm:"not null;default:true" json:"is_active"`
	CreatedAt          time.Time          `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time          `gorm:"autoUpdateTime" json:"updated_at"`
}

/*
caches:
	Operator:$username
*/

func (op Operator) IsAdmin() bool {
	return op.Role == OperatorRoleAdmin
}

// GetOperatorByUsername resolves an operator, redis first then db.
func GetOperatorByUsername(ctx context.Context, username string) (*Operator, error) {
	if username == "" {
		return nil, errors.New("username is required")
	}

	var operator Operator
	exists, err := config.GetRedisObject("Operator:"+username, &operator)
	if err != nil {
		return nil, err
	}
	if exists {
		return &operator, nil
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Where("username = ?", username).Take(&operator).Error; err != nil {
		return nil, utils.ErrorRecordNotFound
	}

	// caching is best-effort
	_ = config.SetRedisObject("Operator:"+username, &operator, utils.GetCacheLifespan())
	return &operator, nil
}

type NewOperator struct {
	Username           string             `json:"username" binding:"required"`
	Name               string             `json:"name" binding:"required"`
	Role               OperatorRole       `json:"role" binding:"required"`
	PlatformAssignment PlatformAssignment `json:"platform_assignment" binding:"required"`
}

func UpsertOperator(ctx context.Context, input *NewOperator) (*Operator, error) {
	db := config.GetDB()

	var operator Operator
	err := db.WithContext(ctx).Where("username = ?", input.Username).Take(&operator).Error
	if err == nil {
		err = db.WithContext(ctx).Model(&operator).Updates(map[string]interface{}{
			"Name":               input.Name,
			"Role":               input.Role,
			"PlatformAssignment": input.PlatformAssignment,
			"IsActive":           utils.NewTrue(),
		}).Error
		if err != nil {
			return nil, err
		}
	} else {
		operator = Operator{
			Username:           input.Username,
			Name:               input.Name,
			Role:               input.Role,
			PlatformAssignment: input.PlatformAssignment,
			IsActive:           utils.NewTrue(),
		}
		if err := db.WithContext(ctx).Create(&operator).Error; err != nil {
			return nil, err
		}
	}

	_ = config.RemoveRedisKey("Operator:" + input.Username)
	return &operator, nil
}

// OperatorFromContext rebuilds the caller identity placed there by the session
// middleware. Request-scoped by design: no ambient session globals.
func OperatorFromContext(ctx context.Context) (*Operator, error) {
	username, ok := utils.GetUsernameFromContext(ctx)
	if !ok || username == "" {
		return nil, errors.New("unauthorized")
	}
	role, _ := utils.GetRoleFromContext(ctx)
	platform, _ := utils.GetPlatformFromContext(ctx)
	id, _ := utils.GetOperatorIdFromContext(ctx)
	name, _ := utils.GetOperatorNameFromContext(ctx)
	return &Operator{
		ID:                 id,
		Username:           username,
		Name:               name,
		Role:               OperatorRole(role),
		PlatformAssignment: PlatformAssignment(platform),
	}, nil
}
