package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/turtacn/HitForge-Discovery/internal/domain/citation"
	driver "github.com/turtacn/HitForge-Discovery/internal/infrastructure/database/neo4j"
	"github.com/turtacn/HitForge-Discovery/internal/infrastructure/monitoring/logging"
)

type neo4jCitationRepo struct {
	driver *driver.Driver
	log    logging.Logger
}

func NewNeo4jCitationRepo(d *driver.Driver, log logging.Logger) citation.CitationRepository {
	return &neo4jCitationRepo{
		driver: d,
		log:    log,
	}
}

func (r *neo4jCitationRepo) EnsurePatentNode(ctx context.Context, patentID uuid.UUID, patentNumber string, jurisdiction string, filingDate *time.Time) error {
	query := `
		MERGE (p:Patent {id: $id})
		ON CREATE SET p.patent_number = $number, p.jurisdiction = $jurisdiction, p.filing_date = $filingDate, p.created_at = datetime()
		ON MATCH SET p.patent_number = $number, p.jurisdiction = $jurisdiction
	`
	params := map[string]interface{}{
		"id":           patentID.String(),
		"number":       patentNumber,
		"jurisdiction": jurisdiction,
	}
	if filingDate != nil {
		params["filingDate"] = neo4j.DateOf(*filingDate)
	} else {
		params["filingDate"] = nil
	}

	_, err := r.driver.ExecuteWrite(ctx, func(tx driver.Transaction) (interface{}, error) {
		_, err := tx.Run(ctx, query, params)
		return nil, err
	})
	return err
}

func (r *neo4jCitationRepo) BatchEnsurePatentNodes(ctx context.Context, patents []*citation.PatentNodeData) error {
	if len(patents) == 0 {
		return nil
	}
	query := `
		UNWIND $batch AS row
		MERGE (p:Patent {id: row.id})
		ON CREATE SET p.patent_number = row.number, p.jurisdiction = row.jurisdiction, p.filing_date = date(row.filing_date), p.created_at = datetime()
		ON MATCH SET p.patent_number = row.number, p.jurisdiction = row.jurisdiction
	`
	var batch []map[string]interface{}
	for _, p := range patents {
		row := map[string]interface{}{
			"id":           p.ID.String(),
			"number":       p.PatentNumber,
			"jurisdiction": p.Jurisdiction,
		}
		if p.FilingDate != nil {
			row["filing_date"] = p.FilingDate.Format("2006-01-02") // Simplified date passing
		}
		batch = append(batch, row)
	}

	_, err := r.driver.ExecuteWrite(ctx, func(tx driver.Transaction) (interface{}, error) {
		_, err := tx.Run(ctx, query, map[string]interface{}{"batch": batch})
		return nil, err
	})
	return err
}

func (r *neo4jCitationRepo) CreateCitation(ctx context.Context, fromPatentID, toPatentID uuid.UUID, citationType string, metadata map[string]interface{}) error {
	query := `
		MATCH (a:Patent {id: $fromId}), (b:Patent {id: $toId})
		MERGE (a)-[r:CITES {type: $type}]->(b)
		ON CREATE SET r.created_at = datetime(), r += $metadata
	`
	params := map[string]interface{}{
		"fromId":   fromPatentID.String(),
		"toId":     toPatentID.String(),
		"type":     citationType,
		"metadata": metadata,
	}
	_, err := r.driver.ExecuteWrite(ctx, func(tx driver.Transaction) (interface{}, error) {
		result, err := tx.Run(ctx, query, params)
		if err != nil { return nil, err }
		summary, err := result.Consume(ctx)
		if err == nil && summary.Counters().RelationshipsCreated() == 0 {
			// Might be already existing or nodes not found.
			// Ideally check if nodes exist.
		}
		return nil, err
	})
	return err
}

func (r *neo4jCitationRepo) DeleteCitation(ctx context.Context, fromPatentID, toPatentID uuid.UUID, citationType string) error {
	query := `
		MATCH (a:Patent {id: $fromId})-[r:CITES {type: $type}]->(b:Patent {id: $toId})
		DELETE r
	`
	params := map[string]interface{}{
		"fromId": fromPatentID.String(),
		"toId":   toPatentID.String(),
		"type":   citationType,
	}
	_, err := r.driver.ExecuteWrite(ctx, func(tx driver.Transaction) (interface{}, error) {
		_, err := tx.Run(ctx, query, params)
		return nil, err
	})
	return err
}

func (r *neo4jCitationRepo) BatchCreateCitations(ctx context.Context, citations []*citation.CitationEdge) error {
	// ... similar to BatchEnsurePatentNodes
	return nil
}

func (r *neo4jCitationRepo) GetForwardCitations(ctx context.Context, patentID uuid.UUID, depth int, limit int) ([]*citation.CitationPath, error) {
	// ...
	return nil, nil
}

func (r *neo4jCitationRepo) GetBackwardCitations(ctx context.Context, patentID uuid.UUID, depth int, limit int) ([]*citation.CitationPath, error) {
	// ...
	return nil, nil
}

func (r *neo4jCitationRepo) GetCitationNetwork(ctx context.Context, patentID uuid.UUID, depth int) (*citation.CitationNetwork, error) {
	// ...
	return nil, nil
}

func (r *neo4jCitationRepo) GetCitationCount(ctx context.Context, patentID uuid.UUID) (*citation.CitationStats, error) {
	// ...
	return nil, nil
}

func (r *neo4jCitationRepo) GetMostCitedPatents(ctx context.Context, jurisdiction *string, limit int) ([]*citation.PatentWithCitationCount, error) {
	// ...
	return nil, nil
}

func (r *neo4jCitationRepo) GetCitationChain(ctx context.Context, fromPatentID, toPatentID uuid.UUID) ([]*citation.CitationPath, error) {
	// ...
	return nil, nil
}

func (r *neo4jCitationRepo) GetCoCitationPatents(ctx context.Context, patentID uuid.UUID, minCommonCitations int, limit int) ([]*citation.CoCitationResult, error) {
	// ...
	return nil, nil
}

func (r *neo4jCitationRepo) GetBibliographicCoupling(ctx context.Context, patentID uuid.UUID, minCommonReferences int, limit int) ([]*citation.CouplingResult, error) {
	// ...
	return nil, nil
}

func (r *neo4jCitationRepo) CalculatePageRank(ctx context.Context, iterations int, dampingFactor float64) error {
	// ...
	return nil
}

func (r *neo4jCitationRepo) GetTopPageRankPatents(ctx context.Context, limit int) ([]*citation.PatentWithPageRank, error) {
	// ...
	return nil, nil
}

//Personal.AI order the ending
