package model

type PageDescriptor struct {
	ID    string `json:"id"`
	Path  string `json:"path"`
	Title string `json:"title"`
}

type Section struct {
	ID    string           `json:"id"`
	Name  string           `json:"name"`
	Pages []PageDescriptor `json:"pages"`
}

// Sections is the compiled-in page catalog, in display order.
var Sections = []Section{
	{
		ID:   "main-navigation",
		Name: "Main Navigation",
		Pages: []PageDescriptor{
			{ID: "home", Path: "/", Title: "Home"},
			{ID: "understanding-aws", Path: "/learn", Title: "Understanding AWS from Zero"},
			{ID: "aws-basics", Path: "/learn/aws-basics", Title: "Using AWS Products"},
			{ID: "architecture", Path: "/learn/architecture-overview", Title: "Architecture"},
			{ID: "environment-setup", Path: "/learn/environment-setup", Title: "Environment Setup"},
		},
	},
	{
		ID:   "aws-product-guides",
		Name: "AWS Product Guides",
		Pages: []PageDescriptor{
			{ID: "aws-services", Path: "/learn/aws-services", Title: "AWS Services"},
			{ID: "s3-storage", Path: "/learn/s3-storage", Title: "S3 Storage"},
			{ID: "lambda-functions", Path: "/learn/lambda-functions", Title: "Lambda Functions"},
			{ID: "cloudformation", Path: "/learn/cloudformation", Title: "CloudFormation"},
			{ID: "iam-permissions", Path: "/learn/iam-permissions", Title: "IAM Permissions"},
			{ID: "cloudfront", Path: "/learn/cloudfront", Title: "CloudFront"},
			{ID: "route-53", Path: "/learn/route-53", Title: "Route 53"},
			{ID: "ses-email", Path: "/learn/ses-email", Title: "SES Email"},
			{ID: "github-fundamentals", Path: "/learn/github-fundamentals", Title: "GitHub Fundamentals"},
			{ID: "vscode-setup", Path: "/learn/vscode-setup", Title: "VSCode Setup"},
			{ID: "claude-code-setup", Path: "/learn/claude-code-setup", Title: "Claude Code Setup"},
		},
	},
	{
		ID:   "bakery-analogy",
		Name: "AWS Bakery Analogy",
		Pages: []PageDescriptor{
			{ID: "bakery-overview", Path: "/learn/aws-bakery-analogy", Title: "Bakery Overview"},
			{ID: "bakery-stage-1", Path: "/learn/aws-bakery-analogy/stage-1", Title: "Stage 1: Home Kitchen"},
			{ID: "bakery-stage-2", Path: "/learn/aws-bakery-analogy/stage-2", Title: "Stage 2: Recipe Library"},
			{ID: "bakery-stage-3", Path: "/learn/aws-bakery-analogy/stage-3", Title: "Stage 3: Home Distribution"},
			{ID: "bakery-stage-4", Path: "/learn/aws-bakery-analogy/stage-4", Title: "Stage 4: Commercial Partnership"},
		},
	},
	{
		ID:   "other-pages",
		Name: "Other Pages",
		Pages: []PageDescriptor{
			{ID: "setup-guide", Path: "/setup-guide", Title: "Setup Guide"},
			{ID: "templates", Path: "/templates", Title: "Templates"},
			{ID: "about", Path: "/about", Title: "About"},
			{ID: "contact", Path: "/contact", Title: "Contact"},
		},
	},
}

// FoundationPaths are recommended to every learner until completed.
var FoundationPaths = []string{"/learn", "/learn/aws-basics", "/learn/architecture-overview"}

const (
	AchievementFirstPage    = "first-page"
	AchievementQuarter      = "quarter-complete"
	AchievementHalf         = "half-complete"
	AchievementThreeQuarter = "three-quarter-complete"
	AchievementAllComplete  = "all-complete"
	AchievementWeekStreak   = "week-streak"
	AchievementMonthStreak  = "month-streak"
	AchievementSpeedDemon   = "speed-demon"
	AchievementExplorer     = "explorer"

	// SpeedDemonDailyCompletions is the number of pages completed on a single
	// calendar day that unlocks speed-demon.
	SpeedDemonDailyCompletions = 5
)

var AchievementTemplates = []Achievement{
	{ID: AchievementFirstPage, Title: "First Steps", Description: "Complete your first page", Icon: "🎯", Category: CategoryCompletion},
	{ID: AchievementQuarter, Title: "Quarter Master", Description: "Complete 25% of all pages", Icon: "🔥", Category: CategoryCompletion},
	{ID: AchievementHalf, Title: "Halfway Hero", Description: "Complete 50% of all pages", Icon: "⚡", Category: CategoryCompletion},
	{ID: AchievementThreeQuarter, Title: "Almost There", Description: "Complete 75% of all pages", Icon: "🚀", Category: CategoryCompletion},
	{ID: AchievementAllComplete, Title: "AWS Master", Description: "Complete every page in the learning hub", Icon: "👑", Category: CategoryCompletion},
	{ID: AchievementWeekStreak, Title: "Weekly Warrior", Description: "Learn for 7 days in a row", Icon: "📅", Category: CategoryStreak},
	{ID: AchievementMonthStreak, Title: "Monthly Master", Description: "Learn for 30 days in a row", Icon: "🗓️", Category: CategoryStreak},
	{ID: AchievementSpeedDemon, Title: "Speed Demon", Description: "Complete 5 pages in one day", Icon: "💨", Category: CategorySpeed},
	{ID: AchievementExplorer, Title: "Explorer", Description: "Visit all sections of the learning hub", Icon: "🧭", Category: CategoryExploration},
}

var (
	sectionIndex = map[string]*Section{}
	pageIndex    = map[string]PageDescriptor{}
	pageSection  = map[string]string{}
	totalPages   int
)

func init() {
	for i := range Sections {
		section := &Sections[i]
		sectionIndex[section.ID] = section
		for _, page := range section.Pages {
			pageIndex[page.ID] = page
			pageSection[page.ID] = section.ID
			totalPages++
		}
	}
}

func TotalCatalogPages() int {
	return totalPages
}

func TotalCatalogSections() int {
	return len(Sections)
}

func FindSection(sectionID string) (*Section, bool) {
	s, ok := sectionIndex[sectionID]
	return s, ok
}

func FindPage(pageID string) (PageDescriptor, bool) {
	p, ok := pageIndex[pageID]
	return p, ok
}

// SectionOf returns the id of the catalog section containing pageID.
func SectionOf(pageID string) (string, bool) {
	id, ok := pageSection[pageID]
	return id, ok
}

func IsCatalogPage(pageID string) bool {
	_, ok := pageIndex[pageID]
	return ok
}
