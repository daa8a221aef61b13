package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reachround/models"
	"reachround/utils"
)

func TestInvestorService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("Success - Starts pending regardless of source", func(t *testing.T) {
		db := setupTestDB(t)
		svc := NewInvestorService(db)
		owner := seedUser(t, db, "ada@acme.io")
		project := seedProject(t, db, owner.ID)

		manual, err := svc.Create(ctx, owner.ID, project.ID, InvestorInput{Name: "Jane Smith", Email: "jane@sequoia.com"})
		require.NoError(t, err)
		assert.Equal(t, models.ResearchPending, manual.ResearchStatus)
		assert.Equal(t, models.SourceManual, manual.Source)

		found, err := svc.Create(ctx, owner.ID, project.ID, InvestorInput{Name: "John Roe", Source: models.SourceAIFound, MatchScore: utils.Pointer(9)})
		require.NoError(t, err)
		assert.Equal(t, models.ResearchPending, found.ResearchStatus)
		assert.Equal(t, models.SourceAIFound, found.Source)
	})

	t.Run("Error - Invalid email", func(t *testing.T) {
		db := setupTestDB(t)
		svc := NewInvestorService(db)
		owner := seedUser(t, db, "ada@acme.io")
		project := seedProject(t, db, owner.ID)

		_, err := svc.Create(ctx, owner.ID, project.ID, InvestorInput{Name: "Jane", Email: "not-an-email"})
		assert.Equal(t, utils.KindValidation, utils.KindOf(err))
	})

	t.Run("Error - Campaign from another project", func(t *testing.T) {
		db := setupTestDB(t)
		svc := NewInvestorService(db)
		owner := seedUser(t, db, "ada@acme.io")
		project := seedProject(t, db, owner.ID)
		otherProject := seedProject(t, db, owner.ID)
		campaign := models.Campaign{ProjectID: otherProject.ID, Name: "Seed", Ask: "$2M"}
		require.NoError(t, db.Create(&campaign).Error)

		_, err := svc.Create(ctx, owner.ID, project.ID, InvestorInput{Name: "Jane", CampaignID: &campaign.ID})
		assert.Equal(t, utils.KindValidation, utils.KindOf(err))
	})

	t.Run("Error - Cross tenant", func(t *testing.T) {
		db := setupTestDB(t)
		svc := NewInvestorService(db)
		owner := seedUser(t, db, "ada@acme.io")
		intruder := seedUser(t, db, "eve@evil.io")
		project := seedProject(t, db, owner.ID)
		investor := seedInvestor(t, db, project.ID, models.ResearchPending, "")

		_, err := svc.Create(ctx, intruder.ID, project.ID, InvestorInput{Name: "Jane"})
		assert.Equal(t, utils.KindForbidden, utils.KindOf(err))

		_, err = svc.Get(ctx, intruder.ID, investor.ID)
		assert.Equal(t, utils.KindForbidden, utils.KindOf(err))

		_, err = svc.ListByProject(ctx, intruder.ID, project.ID)
		assert.Equal(t, utils.KindForbidden, utils.KindOf(err))
	})
}

func TestInvestorService_BatchCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("Success - Per item results", func(t *testing.T) {
		db := setupTestDB(t)
		svc := NewInvestorService(db)
		owner := seedUser(t, db, "ada@acme.io")
		project := seedProject(t, db, owner.ID)

		result, err := svc.BatchCreate(ctx, owner.ID, project.ID, []InvestorInput{
			{Name: "Jane Smith", Firm: "Sequoia", Source: models.SourceAIFound},
			{Name: ""},
			{Name: "John Roe", Email: "bad@"},
			{Name: "Mary Major", Firm: "Accel", Source: models.SourceAIFound},
		})
		require.NoError(t, err)
		assert.Equal(t, 2, result.Created)
		assert.Equal(t, 2, result.Failed)
		require.Len(t, result.Results, 4)

		assert.True(t, result.Results[0].Success)
		assert.NotNil(t, result.Results[0].Investor)
		assert.False(t, result.Results[1].Success)
		assert.Equal(t, 1, result.Results[1].Index)
		assert.Contains(t, result.Results[1].Error, "name is required")
		assert.False(t, result.Results[2].Success)
		assert.True(t, result.Results[3].Success)

		investors, err := svc.ListByProject(ctx, owner.ID, project.ID)
		require.NoError(t, err)
		assert.Len(t, investors, 2)
	})

	t.Run("Error - Empty batch", func(t *testing.T) {
		db := setupTestDB(t)
		svc := NewInvestorService(db)
		owner := seedUser(t, db, "ada@acme.io")
		project := seedProject(t, db, owner.ID)

		_, err := svc.BatchCreate(ctx, owner.ID, project.ID, nil)
		assert.Equal(t, utils.KindValidation, utils.KindOf(err))
	})
}

func TestInvestorService_UpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	svc := NewInvestorService(db)
	owner := seedUser(t, db, "ada@acme.io")
	project := seedProject(t, db, owner.ID)
	investor := seedInvestor(t, db, project.ID, models.ResearchCompleted, "")
	seedEmail(t, db, investor, models.EmailDraft)

	updated, err := svc.Update(ctx, owner.ID, investor.ID, UpdateInvestorInput{
		Email:       utils.Pointer("jane@sequoia.com"),
		LinkedInURL: utils.Pointer("https://linkedin.com/in/jane"),
	})
	require.NoError(t, err)
	assert.Equal(t, "jane@sequoia.com", utils.Deref(updated.Email))
	assert.Equal(t, "https://linkedin.com/in/jane", utils.Deref(updated.LinkedInURL))
	assert.Equal(t, "Sequoia", utils.Deref(updated.Firm))

	_, err = svc.Update(ctx, owner.ID, investor.ID, UpdateInvestorInput{Name: utils.Pointer("  ")})
	assert.Equal(t, utils.KindValidation, utils.KindOf(err))

	require.NoError(t, svc.Delete(ctx, owner.ID, investor.ID))
	_, err = svc.Get(ctx, owner.ID, investor.ID)
	assert.Equal(t, utils.KindNotFound, utils.KindOf(err))

	var emails int64
	db.Model(&models.Email{}).Count(&emails)
	assert.Zero(t, emails)
}
