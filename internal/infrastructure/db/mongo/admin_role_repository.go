package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/tcon/auth-user-service/internal/core/domain"
)

const adminRoleCollection = "admin_roles"

// MongoAdminRoleRepository persists dynamically registered admin roles.
type MongoAdminRoleRepository struct {
	coll *mongo.Collection
}

func NewAdminRoleRepository(db *mongo.Database) *MongoAdminRoleRepository {
	return &MongoAdminRoleRepository{coll: db.Collection(adminRoleCollection)}
}

type mongoAdminRole struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty"`
	RoleName           string             `bson:"role_name"`
	Description        string             `bson:"description,omitempty"`
	IsActive           bool               `bson:"is_active"`
	AllowedPermissions []string           `bson:"allowed_permissions,omitempty"`
	CreatedBy          string             `bson:"created_by,omitempty"`
	CreatedAt          time.Time          `bson:"created_at"`
	UpdatedAt          time.Time          `bson:"updated_at"`
}

func toRoleDoc(r *domain.AdminRole) *mongoAdminRole {
	return &mongoAdminRole{
		RoleName:           r.RoleName,
		Description:        r.Description,
		IsActive:           r.IsActive,
		AllowedPermissions: r.AllowedPermissions,
		CreatedBy:          r.CreatedBy,
		CreatedAt:          r.CreatedAt,
		UpdatedAt:          r.UpdatedAt,
	}
}

func (m *mongoAdminRole) toDomain() *domain.AdminRole {
	return &domain.AdminRole{
		ID:                 m.ID.Hex(),
		RoleName:           m.RoleName,
		Description:        m.Description,
		IsActive:           m.IsActive,
		AllowedPermissions: m.AllowedPermissions,
		CreatedBy:          m.CreatedBy,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}
}

func (r *MongoAdminRoleRepository) Create(ctx context.Context, role *domain.AdminRole) (*domain.AdminRole, error) {
	doc := toRoleDoc(role)

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrRoleExists
		}
		return nil, fmt.Errorf("insert admin role: %w", err)
	}

	doc.ID = res.InsertedID.(primitive.ObjectID)
	return doc.toDomain(), nil
}

func (r *MongoAdminRoleRepository) Save(ctx context.Context, role *domain.AdminRole) (*domain.AdminRole, error) {
	oid, err := primitive.ObjectIDFromHex(role.ID)
	if err != nil {
		return nil, domain.ErrRoleNotFound
	}

	doc := toRoleDoc(role)
	doc.ID = oid

	if _, err := r.coll.ReplaceOne(ctx, bson.M{"_id": oid}, doc); err != nil {
		return nil, fmt.Errorf("replace admin role: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *MongoAdminRoleRepository) FindByID(ctx context.Context, id string) (*domain.AdminRole, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrRoleNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

// FindActiveByName is the registry half of the admin-elevation check: only
// active entries participate.
func (r *MongoAdminRoleRepository) FindActiveByName(ctx context.Context, roleName string) (*domain.AdminRole, error) {
	return r.findOne(ctx, bson.M{"role_name": roleName, "is_active": true})
}

func (r *MongoAdminRoleRepository) findOne(ctx context.Context, filter bson.M) (*domain.AdminRole, error) {
	var doc mongoAdminRole
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrRoleNotFound
		}
		return nil, fmt.Errorf("find admin role: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *MongoAdminRoleRepository) List(ctx context.Context) ([]*domain.AdminRole, error) {
	return r.list(ctx, bson.M{})
}

func (r *MongoAdminRoleRepository) ListActive(ctx context.Context) ([]*domain.AdminRole, error) {
	return r.list(ctx, bson.M{"is_active": true})
}

func (r *MongoAdminRoleRepository) list(ctx context.Context, filter bson.M) ([]*domain.AdminRole, error) {
	cursor, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list admin roles: %w", err)
	}
	defer cursor.Close(ctx)

	var roles []*domain.AdminRole
	for cursor.Next(ctx) {
		var doc mongoAdminRole
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode admin role: %w", err)
		}
		roles = append(roles, doc.toDomain())
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("iterate admin roles: %w", err)
	}
	return roles, nil
}
