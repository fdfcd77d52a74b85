package repository

import (
	"fmt"
	"time"

	"github.com/BerniceZTT/funnel_end/models"
	"github.com/BerniceZTT/funnel_end/utils"

	"github.com/brianvoe/gofakeit/v6"
	"go.mongodb.org/mongo-driver/bson"
)

// 种子数据用的细分与阶段标签，刻意混入同义写法以覆盖归一化路径
var seedSegments = []string{"Telkom Group", "SOE", "Private", "Government", "SME & Reg", "Total"}
var seedStages = []string{"Leads", "Prospect", "Qualified", "Submission", "Win"}
var seedStatuses = []string{"Open", "Sedang Berjalan", "Selesai", "Gagal"}

// InitializeAdminAccount 初始化管理员账户
func InitializeAdminAccount(defaultTenantID string) error {
	usersCollection := db.Collection(UsersCollection)

	count, err := usersCollection.CountDocuments(ctx, bson.M{"role": models.UserRoleSUPER_ADMIN})
	if err != nil {
		return fmt.Errorf("检查管理员账户失败: %w", err)
	}

	// 如果已存在，则不创建
	if count > 0 {
		utils.Logger.Info().Msg("超级管理员账户已存在，跳过创建")
		return nil
	}

	// 创建默认管理员
	adminUser := models.User{
		Username:  "admin",
		Password:  utils.HashPassword("admin123"),
		Email:     "admin@example.com",
		Role:      models.UserRoleSUPER_ADMIN,
		Status:    models.UserStatusAPPROVED,
		TenantID:  defaultTenantID,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	_, err = usersCollection.InsertOne(ctx, adminUser)
	if err != nil {
		return fmt.Errorf("创建管理员账户失败: %w", err)
	}

	utils.Logger.Info().Msg("已创建默认超级管理员账户")
	return nil
}

// InitializeDefaultTenant 初始化默认租户
func InitializeDefaultTenant(tenantID string) error {
	if tenantID == "" {
		return nil
	}

	tenantsCollection := db.Collection(TenantsCollection)
	count, err := tenantsCollection.CountDocuments(ctx, bson.M{"_id": tenantID})
	if err != nil {
		return fmt.Errorf("检查默认租户失败: %w", err)
	}
	if count > 0 {
		return nil
	}

	_, err = tenantsCollection.InsertOne(ctx, models.Tenant{
		ID:        tenantID,
		Name:      "Default Tenant",
		CreatedAt: time.Now(),
	})
	if err != nil {
		return fmt.Errorf("创建默认租户失败: %w", err)
	}

	utils.Logger.Info().Str("tenantId", tenantID).Msg("已创建默认租户")
	return nil
}

// SeedSampleData 开发环境样例数据
// 仅在debug模式且集合为空时生成，供前端联调使用
func SeedSampleData(tenantID string, year int) error {
	if tenantID == "" {
		return nil
	}

	leadsCollection := db.Collection(MsdcLeadsCollection)
	count, err := leadsCollection.CountDocuments(ctx, bson.M{"tenantId": tenantID})
	if err != nil {
		return fmt.Errorf("检查样例数据失败: %w", err)
	}
	if count > 0 {
		utils.Logger.Info().Msg("样例数据已存在，跳过生成")
		return nil
	}

	gofakeit.Seed(0)

	// 样例线索
	leads := make([]interface{}, 0, 60)
	for i := 0; i < 60; i++ {
		created := gofakeit.DateRange(
			time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC),
			time.Date(year, 12, 31, 0, 0, 0, 0, time.UTC),
		)
		leads = append(leads, models.MsdcLead{
			LeadID:          gofakeit.UUID(),
			TenantID:        tenantID,
			CustomerName:    gofakeit.Company(),
			PIC:             gofakeit.Name(),
			Segment:         seedSegments[gofakeit.Number(0, len(seedSegments)-2)],
			Channel:         gofakeit.RandomString([]string{"MSDC", "Referral", "Tender Board"}),
			NeedDescription: gofakeit.Sentence(8),
			TenderName:      gofakeit.BuzzWord() + " " + gofakeit.NounAbstract(),
			ProjectValueM:   gofakeit.Float64Range(0.5, 120),
			StatusTender:    seedStatuses[gofakeit.Number(0, len(seedStatuses)-1)],
			CreatedAt:       &created,
		})
	}
	if _, err := leadsCollection.InsertMany(ctx, leads); err != nil {
		return fmt.Errorf("生成样例线索失败: %w", err)
	}

	// 样例漏斗行：每个细分每个阶段一行
	funnelCollection := db.Collection(FunnelRowsCollection)
	rows := make([]interface{}, 0, len(seedSegments)*len(seedStages))
	for _, seg := range seedSegments {
		for _, stage := range seedStages {
			rows = append(rows, models.FunnelRow{
				TenantID:     tenantID,
				Segment:      seg,
				Stage:        stage,
				ProjectCount: float64(gofakeit.Number(1, 40)),
				TotalM:       gofakeit.Float64Range(5, 500),
				Year:         year,
			})
		}
	}
	if _, err := funnelCollection.InsertMany(ctx, rows); err != nil {
		return fmt.Errorf("生成样例漏斗行失败: %w", err)
	}

	// 样例目标行
	targetsCollection := db.Collection(LopTargetsCollection)
	targets := make([]interface{}, 0, len(seedSegments))
	for _, seg := range seedSegments {
		targetRkap := gofakeit.Float64Range(100, 800)
		targets = append(targets, models.LopTargetSourceRow{
			TenantID:      tenantID,
			Segment:       seg,
			Year:          year,
			TargetRkapM:   targetRkap,
			TargetStgM:    targetRkap * 1.2,
			KecukupanLopM: gofakeit.Float64Range(50, targetRkap),
			QualifiedLopM: gofakeit.Float64Range(20, targetRkap/2),
		})
	}
	if _, err := targetsCollection.InsertMany(ctx, targets); err != nil {
		return fmt.Errorf("生成样例目标行失败: %w", err)
	}

	utils.Logger.Info().
		Str("tenantId", tenantID).
		Int("year", year).
		Msg("已生成开发环境样例数据")
	return nil
}
