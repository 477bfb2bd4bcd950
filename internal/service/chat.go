package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"styleme/internal/model"
)

// Chat messages
const (
	MsgChatUnavailable = "AI assistant temporarily unavailable"
	MsgContextCleared  = "Chat context cleared"
	MsgMessageRequired = "Message cannot be empty"
)

const (
	recentOrderLimit     = 3
	popularCategoryCount = 4
)

var greetings = []string{
	"👋 Hello! I'm your AI fashion assistant. I can help you find products, browse categories, check prices, and get personalized recommendations using natural language!",
	"Hi there! 🌟 Ready to discover amazing fashion? I understand natural language - just tell me what you're looking for!",
	"Hello! I'm here to make your shopping experience smarter. Ask me anything about our products in your own words!",
}

var smartSuggestions = []string{
	"🔍 Find red dresses under Rs. 3000",
	"👔 Show me men's formal wear",
	"👟 What shoes are trending?",
	"💰 Best deals available now",
	"🌟 Recommend something for a party",
	"📱 Browse women's accessories",
}

var statusEmoji = map[string]string{
	"pending":    "⏳",
	"processing": "⚙️",
	"shipped":    "🚚",
	"delivered":  "✅",
	"cancelled":  "❌",
}

var chatUnderPattern = regexp.MustCompile(`(?i)under (?:rs\.?\s*)?(\d+)`)

var amountPrinter = message.NewPrinter(language.English)

// reply is an intent handler's output before it is wrapped in a ChatResponse
type reply struct {
	text        string
	actions     []model.ChatAttachment
	suggestions []string
}

// ChatService answers assistant messages and keeps per-conversation history
type ChatService struct {
	store         CatalogStore
	vocab         *CatalogVocabulary
	classifier    *Classifier
	extractor     *Extractor
	builder       *QueryBuilder
	conversations ConversationStore
	limit         int
	logger        *zap.Logger

	locks *keyedMutex
	pick  func(n int) int
	newID func() string
	now   func() time.Time
}

// NewChatService creates a new chat service
func NewChatService(
	store CatalogStore,
	vocab *CatalogVocabulary,
	classifier *Classifier,
	extractor *Extractor,
	builder *QueryBuilder,
	conversations ConversationStore,
	limit int,
	logger *zap.Logger,
) *ChatService {
	return &ChatService{
		store:         store,
		vocab:         vocab,
		classifier:    classifier,
		extractor:     extractor,
		builder:       builder,
		conversations: conversations,
		limit:         limit,
		logger:        logger,
		locks:         newKeyedMutex(),
		pick:          rand.IntN,
		newID:         uuid.NewString,
		now:           time.Now,
	}
}

// Chat classifies the message, answers it and records both turns. The returned
// id is the conversation the turns were stored under, created when needed.
func (s *ChatService) Chat(ctx context.Context, conversationID string, userID int64, text string) (*model.ChatResponse, string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return &model.ChatResponse{Success: false, Message: MsgMessageRequired}, conversationID
	}
	if conversationID == "" {
		conversationID = s.newID()
	}

	unlock := s.locks.Lock(conversationID)
	defer unlock()

	state := s.loadState(ctx, conversationID)
	state.Append(model.ConversationMessage{Role: model.RoleUser, Content: text, Timestamp: s.now()})

	categories, brands := s.vocab.Get(ctx)
	intent := s.classifier.Classify(text, categories, brands)
	r := s.respond(ctx, text, intent, userID, categories, brands)

	state.Append(model.ConversationMessage{
		Role:      model.RoleBot,
		Content:   r.text,
		Timestamp: s.now(),
		Intent:    intent.Intent,
		Entities:  intent.Entities,
	})
	state.LastIntent = intent.Intent
	if userID > 0 {
		for _, e := range intent.Entities {
			state.BumpPreference(e)
		}
	}
	if err := s.conversations.Save(ctx, state); err != nil {
		s.logger.Warn("Failed to save conversation", zap.String("conversation_id", conversationID), zap.Error(err))
	}

	confidence := intent.Confidence
	return &model.ChatResponse{
		Success:     true,
		Reply:       r.text,
		Actions:     r.actions,
		Suggestions: r.suggestions,
		Intent:      intent.Intent,
		Confidence:  &confidence,
	}, conversationID
}

// History returns the stored conversation, or an empty one
func (s *ChatService) History(ctx context.Context, conversationID string) *model.ConversationState {
	unlock := s.locks.Lock(conversationID)
	defer unlock()
	return s.loadState(ctx, conversationID)
}

// ClearContext drops the stored conversation
func (s *ChatService) ClearContext(ctx context.Context, conversationID string) *model.ChatResponse {
	if conversationID != "" {
		unlock := s.locks.Lock(conversationID)
		defer unlock()
		if err := s.conversations.Delete(ctx, conversationID); err != nil {
			s.logger.Warn("Failed to clear conversation", zap.String("conversation_id", conversationID), zap.Error(err))
			return &model.ChatResponse{Success: false, Message: MsgChatUnavailable}
		}
	}
	return &model.ChatResponse{Success: true, Message: MsgContextCleared}
}

// SmartSuggestions returns the canned starter prompts
func (s *ChatService) SmartSuggestions() *model.ChatResponse {
	out := make([]string, len(smartSuggestions))
	copy(out, smartSuggestions)
	return &model.ChatResponse{Success: true, Suggestions: out}
}

func (s *ChatService) loadState(ctx context.Context, id string) *model.ConversationState {
	state, err := s.conversations.Load(ctx, id)
	if err == nil {
		return state
	}
	if !errors.Is(err, model.ErrNotFound) {
		s.logger.Warn("Failed to load conversation, starting fresh", zap.String("conversation_id", id), zap.Error(err))
	}
	return model.NewConversationState(id)
}

func (s *ChatService) respond(ctx context.Context, text string, intent *model.IntentResult, userID int64, categories []model.Category, brands []string) reply {
	switch intent.Intent {
	case model.IntentGreeting:
		return s.greeting()
	case model.IntentProductSearch:
		return s.productSearch(ctx, text, intent.Entities, categories, brands)
	case model.IntentCategoryBrowse:
		return s.categoryBrowse(ctx)
	case model.IntentPriceInquiry:
		return s.priceInquiry(ctx, text)
	case model.IntentRecommendation:
		return s.recommendations(ctx, userID)
	case model.IntentOrderInquiry:
		return s.orderInquiry(ctx, userID)
	default:
		return generalHelp()
	}
}

func (s *ChatService) greeting() reply {
	return reply{
		text: greetings[s.pick(len(greetings))],
		suggestions: []string{
			"🔍 Find red dresses under Rs. 3000",
			"👔 Show me men's formal wear",
			"👟 What shoes are trending?",
			"🌟 Recommend something for me",
			"📱 Browse categories",
		},
	}
}

func (s *ChatService) productSearch(ctx context.Context, text string, entities []string, categories []model.Category, brands []string) reply {
	if len(entities) == 0 {
		return reply{
			text:        "I'd love to help you find products! Could you be more specific? For example: 'Show me red dresses' or 'Find men's casual shirts'",
			suggestions: []string{"👗 Women's dresses", "👔 Men's shirts", "👟 Footwear", "👜 Accessories"},
		}
	}

	filters := FromFilterSet(s.extractor.Extract(text, categories, brands), true)
	result, err := s.builder.Run(ctx, s.builder.BuildLimited(filters, model.SortFeatured, s.limit))
	if err != nil {
		return reply{
			text:        "I'm having trouble searching right now. Please try again or browse our categories.",
			suggestions: []string{"📋 Browse categories", "🔄 Try again"},
		}
	}

	if len(result.Products) == 0 {
		return reply{
			text:        "I couldn't find any products matching your search. Let me suggest some alternatives:",
			actions:     []model.ChatAttachment{{Type: model.AttachmentCategories, Data: s.popularCategories(categories)}},
			suggestions: []string{"🔍 Try different keywords", "📋 Browse all categories", "🌟 Show trending items"},
		}
	}

	text = fmt.Sprintf("🎉 Found %d products for '%s'. Here are the best matches:", len(result.Products), strings.Join(entities, ", "))
	return reply{
		text:        text,
		actions:     []model.ChatAttachment{{Type: model.AttachmentProducts, Data: result.Products}},
		suggestions: []string{"💰 Show discounted items", "🔍 Refine search", "⭐ View product details"},
	}
}

func (s *ChatService) categoryBrowse(ctx context.Context) reply {
	categories, err := s.store.ListCategoriesWithCounts(ctx)
	if err != nil {
		s.logger.Error("Failed to list categories", zap.Error(err))
		return reply{
			text:        "I'm having trouble loading categories right now. Please try again.",
			suggestions: []string{"🔄 Try again", "🔍 Search products instead"},
		}
	}
	sort.SliceStable(categories, func(i, j int) bool {
		return categories[i].ProductCount > categories[j].ProductCount
	})
	return reply{
		text:        "📂 Here are all our product categories. Click on any to explore:",
		actions:     []model.ChatAttachment{{Type: model.AttachmentCategories, Data: categories}},
		suggestions: []string{"👗 Women's clothing", "👔 Men's clothing", "👟 Footwear", "👜 Accessories"},
	}
}

func (s *ChatService) priceInquiry(ctx context.Context, text string) reply {
	if m := chatUnderPattern.FindStringSubmatch(text); m != nil {
		if maxPrice, err := strconv.ParseFloat(m[1], 64); err == nil {
			filters := &model.ProductFilters{PriceMax: &maxPrice, InStockOnly: true}
			result, err := s.builder.Run(ctx, s.builder.BuildLimited(filters, model.SortPriceAsc, s.limit))
			if err == nil && len(result.Products) > 0 {
				return reply{
					text:        fmt.Sprintf("💰 Found %d products under Rs. %s:", len(result.Products), m[1]),
					actions:     []model.ChatAttachment{{Type: model.AttachmentProducts, Data: result.Products}},
					suggestions: []string{"💸 Show cheapest first", "🏷️ View discounted items", "🔍 Search specific items"},
				}
			}
		}
	}
	return reply{
		text:        "I can help you find products within your budget! Try asking 'Show me products under Rs. 3000' or specify a price range.",
		suggestions: []string{"💸 Products under Rs. 2000", "💰 Products under Rs. 5000", "🏷️ Discounted items"},
	}
}

func (s *ChatService) recommendations(ctx context.Context, userID int64) reply {
	result, err := s.builder.Run(ctx, s.builder.BuildLimited(&model.ProductFilters{InStockOnly: true}, model.SortFeatured, s.limit))
	if err != nil {
		return reply{
			text:        "I'm having trouble loading recommendations right now. Please try browsing our categories instead.",
			suggestions: []string{"📋 Browse categories", "🔍 Search products"},
		}
	}
	text := "🌟 Here are my personalized recommendations for you:"
	if userID > 0 {
		text += " Based on current trends and popular items!"
	}
	return reply{
		text:        text,
		actions:     []model.ChatAttachment{{Type: model.AttachmentRecommendations, Data: result.Products}},
		suggestions: []string{"💰 Show discounted recommendations", "🔍 Find similar products", "❤️ Add to wishlist"},
	}
}

func (s *ChatService) orderInquiry(ctx context.Context, userID int64) reply {
	if userID <= 0 {
		return reply{
			text:        "🔐 To check your orders, please log in to your account first. I'll be happy to help you track your orders once you're logged in!",
			suggestions: []string{"🔑 Login to account", "📝 Create account", "🛍️ Continue shopping"},
		}
	}

	orders, err := s.store.RecentOrders(ctx, userID, recentOrderLimit)
	if err != nil {
		s.logger.Error("Failed to list orders", zap.Int64("user_id", userID), zap.Error(err))
		return reply{
			text:        "I'm having trouble accessing your orders right now. Please try again or contact support.",
			suggestions: []string{"🔄 Try again", "📞 Contact support"},
		}
	}
	if len(orders) == 0 {
		return reply{
			text:        "📦 You don't have any orders yet. Ready to start shopping? I can help you find some amazing products!",
			suggestions: []string{"🔍 Search products", "🌟 View trending items", "🏷️ Browse categories"},
		}
	}

	var sb strings.Builder
	sb.WriteString("📦 Here are your recent orders:\n\n")
	for _, o := range orders {
		emoji, ok := statusEmoji[strings.ToLower(o.Status)]
		if !ok {
			emoji = "📦"
		}
		fmt.Fprintf(&sb, "🧾 **Order #%s**\n", o.OrderNumber)
		sb.WriteString(amountPrinter.Sprintf("💰 Amount: Rs. %.2f\n", o.TotalAmount))
		fmt.Fprintf(&sb, "%s Status: %s\n", emoji, o.Status)
		fmt.Fprintf(&sb, "📅 Date: %s\n\n", o.CreatedAt.Format("Jan 2, 2006"))
	}
	return reply{
		text:        sb.String(),
		actions:     []model.ChatAttachment{{Type: model.AttachmentOrders, Data: orders}},
		suggestions: []string{"📋 View order details", "🚚 Track delivery", "🛍️ Shop again"},
	}
}

func (s *ChatService) popularCategories(categories []model.Category) []model.Category {
	sorted := make([]model.Category, len(categories))
	copy(sorted, categories)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })
	if len(sorted) > popularCategoryCount {
		sorted = sorted[:popularCategoryCount]
	}
	return sorted
}

func generalHelp() reply {
	var sb strings.Builder
	sb.WriteString("I'm here to help! I can assist you with:\n\n")
	sb.WriteString("🔍 **Smart Product Search** - Just describe what you want naturally\n")
	sb.WriteString("📂 **Category Browsing** - Explore our product categories\n")
	sb.WriteString("💰 **Price Inquiries** - Find products within your budget\n")
	sb.WriteString("🌟 **Recommendations** - Get personalized suggestions\n")
	sb.WriteString("📦 **Order Tracking** - Check your order status\n\n")
	sb.WriteString("Try asking: 'Show me red dresses under Rs. 5000' or 'What's trending in men's wear?'")
	return reply{
		text:        sb.String(),
		suggestions: []string{"🔍 Search for products", "📂 Browse categories", "🌟 Get recommendations", "💰 Find budget-friendly items"},
	}
}
