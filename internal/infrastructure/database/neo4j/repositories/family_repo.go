package repositories

import (
	"context"

	"github.com/turtacn/HitForge-Discovery/internal/domain/family"
	driver "github.com/turtacn/HitForge-Discovery/internal/infrastructure/database/neo4j"
	"github.com/turtacn/HitForge-Discovery/internal/infrastructure/monitoring/logging"
)

type neo4jFamilyRepo struct {
	driver *driver.Driver
	log    logging.Logger
}

func NewNeo4jFamilyRepo(d *driver.Driver, log logging.Logger) family.FamilyRepository {
	return &neo4jFamilyRepo{
		driver: d,
		log:    log,
	}
}

func (r *neo4jFamilyRepo) EnsureFamilyNode(ctx context.Context, familyID string, familyType string, metadata map[string]interface{}) error {
	query := `
		MERGE (f:PatentFamily {family_id: $familyId})
		ON CREATE SET f.family_type = $type, f.created_at = datetime(), f += $metadata
		ON MATCH SET f.family_type = $type, f.updated_at = datetime()
	`
	params := map[string]interface{}{
		"familyId": familyID,
		"type":     familyType,
		"metadata": metadata,
	}
	_, err := r.driver.ExecuteWrite(ctx, func(tx driver.Transaction) (interface{}, error) {
		_, err := tx.Run(ctx, query, params)
		return nil, err
	})
	return err
}

func (r *neo4jFamilyRepo) GetFamily(ctx context.Context, familyID string) (*family.FamilyAggregate, error) {
	// ...
	return nil, nil
}

func (r *neo4jFamilyRepo) DeleteFamily(ctx context.Context, familyID string) error {
	// ...
	return nil
}

func (r *neo4jFamilyRepo) ListFamilies(ctx context.Context, familyType *string, limit, offset int) ([]*family.FamilyAggregate, int64, error) {
	// ...
	return nil, 0, nil
}

func (r *neo4jFamilyRepo) AddMember(ctx context.Context, familyID string, patentID string, memberRole string) error {
	// ...
	return nil
}

func (r *neo4jFamilyRepo) RemoveMember(ctx context.Context, familyID string, patentID string) error {
	// ...
	return nil
}

func (r *neo4jFamilyRepo) GetMembers(ctx context.Context, familyID string, memberRole *string) ([]*family.FamilyMember, error) {
	// ...
	return nil, nil
}

func (r *neo4jFamilyRepo) GetFamilyByPatent(ctx context.Context, patentID string) ([]*family.FamilyAggregate, error) {
	// ...
	return nil, nil
}

func (r *neo4jFamilyRepo) BatchAddMembers(ctx context.Context, familyID string, members []*family.FamilyMemberInput) error {
	// ...
	return nil
}

func (r *neo4jFamilyRepo) CreatePriorityLink(ctx context.Context, fromPatentID, toPatentID string, priorityDate string, priorityCountry string) error {
	// ...
	return nil
}

func (r *neo4jFamilyRepo) GetPriorityChain(ctx context.Context, patentID string) ([]*family.PriorityLink, error) {
	// ...
	return nil, nil
}

func (r *neo4jFamilyRepo) GetDerivedPatents(ctx context.Context, patentID string) ([]*family.PriorityLink, error) {
	// ...
	return nil, nil
}

func (r *neo4jFamilyRepo) GetFamilyStats(ctx context.Context, familyID string) (*family.FamilyStats, error) {
	// ...
	return nil, nil
}

func (r *neo4jFamilyRepo) GetFamilyCoverage(ctx context.Context, familyID string) (map[string]int64, error) {
	// ...
	return nil, nil
}

func (r *neo4jFamilyRepo) FindRelatedFamilies(ctx context.Context, familyID string, maxDistance int) ([]*family.RelatedFamily, error) {
	// ...
	return nil, nil
}

//Personal.AI order the ending
