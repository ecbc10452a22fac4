package recipes

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"foodgram/internal/domain"
	"foodgram/internal/modules/common"
	"foodgram/internal/permission"
	"foodgram/internal/pkg/validator"
	"foodgram/internal/repository"
	"foodgram/internal/storage"
)

type RecipeRepository interface {
	List(ctx context.Context, f repository.RecipeFilter, limit, offset int) ([]domain.Recipe, int64, error)
	GetByID(ctx context.Context, id int64) (*domain.Recipe, error)
	Exists(ctx context.Context, id int64) (bool, error)
	Create(ctx context.Context, recipe *domain.Recipe, tagIDs []int64, items []repository.IngredientAmount) error
	Update(ctx context.Context, recipe *domain.Recipe, tagIDs []int64, items []repository.IngredientAmount) error
	Delete(ctx context.Context, id int64) error
	ShoppingList(ctx context.Context, userID int64) ([]domain.ShoppingListItem, error)
}

type TagFinder interface {
	FindByIDs(ctx context.Context, ids []int64) ([]domain.Tag, error)
}

type IngredientFinder interface {
	FindByIDs(ctx context.Context, ids []int64) ([]domain.Ingredient, error)
}

// RecipeSet: избранное или корзина пользователя.
type RecipeSet interface {
	Add(ctx context.Context, userID, recipeID int64) error
	Remove(ctx context.Context, userID, recipeID int64) error
	Exists(ctx context.Context, userID, recipeID int64) (bool, error)
	Contains(ctx context.Context, userID int64, recipeIDs []int64) (map[int64]bool, error)
}

type SubscriptionChecker interface {
	SubscribedTo(ctx context.Context, userID int64, authorIDs []int64) (map[int64]bool, error)
}

type Service struct {
	recipes     RecipeRepository
	tags        TagFinder
	ingredients IngredientFinder
	favorites   RecipeSet
	cart        RecipeSet
	subs        SubscriptionChecker
	images      storage.Store
	logger      *slog.Logger
}

func NewService(
	recipes RecipeRepository,
	tags TagFinder,
	ingredients IngredientFinder,
	favorites RecipeSet,
	cart RecipeSet,
	subs SubscriptionChecker,
	images storage.Store,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		recipes:     recipes,
		tags:        tags,
		ingredients: ingredients,
		favorites:   favorites,
		cart:        cart,
		subs:        subs,
		images:      images,
		logger:      logger,
	}
}

// List возвращает страницу рецептов. Фильтры по избранному и корзине
// применяются только для аутентифицированного участника.
func (s *Service) List(ctx context.Context, p domain.Principal, q ListQuery, limit, offset int) ([]RecipeResponse, int64, error) {
	filter := repository.RecipeFilter{
		AuthorID: q.AuthorID,
		TagSlugs: q.Tags,
	}
	if p.Authenticated() {
		if q.IsFavorited {
			filter.FavoritedBy = p.UserID
		}
		if q.IsInShoppingCart {
			filter.InCartOf = p.UserID
		}
	}

	list, total, err := s.recipes.List(ctx, filter, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	out, err := s.present(ctx, p, list)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (s *Service) Get(ctx context.Context, p domain.Principal, id int64) (*RecipeResponse, error) {
	recipe, err := s.getRecipe(ctx, id)
	if err != nil {
		return nil, err
	}
	out, err := s.present(ctx, p, []domain.Recipe{*recipe})
	if err != nil {
		return nil, err
	}
	return &out[0], nil
}

// Create сохраняет рецепт от имени участника; он становится автором.
func (s *Service) Create(ctx context.Context, p domain.Principal, req RecipeWriteRequest) (*RecipeResponse, error) {
	if !p.Authenticated() {
		return nil, permission.ErrUnauthenticated
	}
	items, err := s.validateWrite(ctx, &req, true)
	if err != nil {
		return nil, err
	}

	imageURL, err := s.saveImage(ctx, req.Image)
	if err != nil {
		return nil, err
	}

	authorID := p.UserID
	recipe := &domain.Recipe{
		AuthorID:    &authorID,
		Name:        req.Name,
		Text:        req.Text,
		CookingTime: int(req.CookingTime),
		Image:       imageURL,
	}
	if err := s.recipes.Create(ctx, recipe, req.Tags, items); err != nil {
		s.dropImage(ctx, imageURL)
		return nil, fmt.Errorf("create recipe: %w", err)
	}

	return s.Get(ctx, p, recipe.ID)
}

// Update перезаписывает рецепт целиком. Изображение необязательно:
// без него остаётся текущее.
func (s *Service) Update(ctx context.Context, p domain.Principal, method string, id int64, req RecipeWriteRequest) (*RecipeResponse, error) {
	existing, err := s.getRecipe(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := permission.Check(permission.RecipeMutation(method, p, existing.AuthorID), p); err != nil {
		return nil, err
	}

	items, err := s.validateWrite(ctx, &req, false)
	if err != nil {
		return nil, err
	}

	imageURL := existing.Image
	if req.Image != "" {
		if imageURL, err = s.saveImage(ctx, req.Image); err != nil {
			return nil, err
		}
	}

	recipe := &domain.Recipe{
		ID:          existing.ID,
		AuthorID:    existing.AuthorID,
		Name:        req.Name,
		Text:        req.Text,
		CookingTime: int(req.CookingTime),
		Image:       imageURL,
	}
	if err := s.recipes.Update(ctx, recipe, req.Tags, items); err != nil {
		if imageURL != existing.Image {
			s.dropImage(ctx, imageURL)
		}
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update recipe %d: %w", id, err)
	}
	if imageURL != existing.Image {
		s.dropImage(ctx, existing.Image)
	}

	return s.Get(ctx, p, recipe.ID)
}

// Delete удаляет рецепт вместе с избранным, корзинами и связями.
func (s *Service) Delete(ctx context.Context, p domain.Principal, id int64) error {
	existing, err := s.getRecipe(ctx, id)
	if err != nil {
		return err
	}
	if err := permission.Check(permission.RecipeMutation(http.MethodDelete, p, existing.AuthorID), p); err != nil {
		return err
	}

	if err := s.recipes.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("delete recipe %d: %w", id, err)
	}
	s.dropImage(ctx, existing.Image)
	return nil
}

func (s *Service) AddFavorite(ctx context.Context, p domain.Principal, id int64) (*common.ShortRecipeResponse, error) {
	return s.addTo(ctx, p, id, s.favorites, ErrAlreadyFavorited)
}

func (s *Service) RemoveFavorite(ctx context.Context, p domain.Principal, id int64) error {
	return s.removeFrom(ctx, p, id, s.favorites, ErrNotInFavorites)
}

func (s *Service) AddToShoppingCart(ctx context.Context, p domain.Principal, id int64) (*common.ShortRecipeResponse, error) {
	return s.addTo(ctx, p, id, s.cart, ErrAlreadyInCart)
}

func (s *Service) RemoveFromShoppingCart(ctx context.Context, p domain.Principal, id int64) error {
	return s.removeFrom(ctx, p, id, s.cart, ErrNotInShoppingCart)
}

// ShoppingList возвращает текст списка покупок по корзине участника.
func (s *Service) ShoppingList(ctx context.Context, p domain.Principal) (string, error) {
	if !p.Authenticated() {
		return "", permission.ErrUnauthenticated
	}
	items, err := s.recipes.ShoppingList(ctx, p.UserID)
	if err != nil {
		return "", fmt.Errorf("shopping list: %w", err)
	}
	return RenderShoppingList(items), nil
}

// RenderShoppingList: по строке "<название> (<единица>) - <сумма>" на позицию.
func RenderShoppingList(items []domain.ShoppingListItem) string {
	var b strings.Builder
	for _, it := range items {
		fmt.Fprintf(&b, "%s (%s) - %d\n", it.Name, it.MeasurementUnit, it.Amount)
	}
	return b.String()
}

func (s *Service) addTo(ctx context.Context, p domain.Principal, id int64, set RecipeSet, already error) (*common.ShortRecipeResponse, error) {
	if !p.Authenticated() {
		return nil, permission.ErrUnauthenticated
	}
	recipe, err := s.getRecipe(ctx, id)
	if err != nil {
		return nil, err
	}

	exists, err := set.Exists(ctx, p.UserID, recipe.ID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, already
	}
	// гонка двух POST упирается в уникальный индекс
	if err := set.Add(ctx, p.UserID, recipe.ID); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, already
		}
		return nil, err
	}

	short := common.NewShortRecipeResponse(recipe)
	return &short, nil
}

func (s *Service) removeFrom(ctx context.Context, p domain.Principal, id int64, set RecipeSet, missing error) error {
	if !p.Authenticated() {
		return permission.ErrUnauthenticated
	}
	ok, err := s.recipes.Exists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}

	if err := set.Remove(ctx, p.UserID, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return missing
		}
		return err
	}
	return nil
}

func (s *Service) getRecipe(ctx context.Context, id int64) (*domain.Recipe, error) {
	recipe, err := s.recipes.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return recipe, nil
}

// validateWrite проверяет форму записи до любых изменений в хранилище.
func (s *Service) validateWrite(ctx context.Context, req *RecipeWriteRequest, requireImage bool) ([]repository.IngredientAmount, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Image = strings.TrimSpace(req.Image)

	fields := validator.Validate(req)
	if fields == nil {
		fields = map[string]string{}
	}
	if requireImage && req.Image == "" {
		fields["image"] = "required"
	}

	seenTags := make(map[int64]bool, len(req.Tags))
	for _, id := range req.Tags {
		if seenTags[id] {
			fields["tags"] = fmt.Sprintf("duplicate tag id %d", id)
			break
		}
		seenTags[id] = true
	}

	items := make([]repository.IngredientAmount, 0, len(req.Ingredients))
	seenIngredients := make(map[int64]bool, len(req.Ingredients))
	for _, in := range req.Ingredients {
		if seenIngredients[in.ID] {
			fields["ingredients"] = fmt.Sprintf("duplicate ingredient id %d", in.ID)
			break
		}
		seenIngredients[in.ID] = true
		items = append(items, repository.IngredientAmount{IngredientID: in.ID, Amount: int(in.Amount)})
	}

	if len(fields) > 0 {
		return nil, &validator.ValidationError{Fields: fields}
	}

	if err := s.checkReferences(ctx, req.Tags, items); err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Service) checkReferences(ctx context.Context, tagIDs []int64, items []repository.IngredientAmount) error {
	tags, err := s.tags.FindByIDs(ctx, tagIDs)
	if err != nil {
		return err
	}
	if missing := firstMissing(tagIDs, tags, func(t domain.Tag) int64 { return t.ID }); missing > 0 {
		return validator.FieldError("tags", fmt.Sprintf("tag %d does not exist", missing))
	}

	ingredientIDs := make([]int64, 0, len(items))
	for _, it := range items {
		ingredientIDs = append(ingredientIDs, it.IngredientID)
	}
	found, err := s.ingredients.FindByIDs(ctx, ingredientIDs)
	if err != nil {
		return err
	}
	if missing := firstMissing(ingredientIDs, found, func(i domain.Ingredient) int64 { return i.ID }); missing > 0 {
		return validator.FieldError("ingredients", fmt.Sprintf("ingredient %d does not exist", missing))
	}
	return nil
}

func firstMissing[T any](want []int64, got []T, id func(T) int64) int64 {
	present := make(map[int64]bool, len(got))
	for _, g := range got {
		present[id(g)] = true
	}
	for _, w := range want {
		if !present[w] {
			return w
		}
	}
	return 0
}

func (s *Service) saveImage(ctx context.Context, raw string) (string, error) {
	img, err := storage.DecodeDataURI(raw)
	if err != nil {
		return "", validator.FieldError("image", err.Error())
	}
	url, err := s.images.Save(ctx, img)
	if err != nil {
		return "", fmt.Errorf("save image: %w", err)
	}
	return url, nil
}

// dropImage удаляет файл изображения; ошибка только логируется.
func (s *Service) dropImage(ctx context.Context, url string) {
	if url == "" {
		return
	}
	if err := s.images.Delete(ctx, url); err != nil {
		s.logger.WarnContext(ctx, "failed to delete recipe image", slog.String("url", url), slog.Any("error", err))
	}
}

// present строит формы чтения; флаги считаются пакетно на всю страницу.
func (s *Service) present(ctx context.Context, p domain.Principal, list []domain.Recipe) ([]RecipeResponse, error) {
	recipeIDs := make([]int64, 0, len(list))
	authorIDs := make([]int64, 0, len(list))
	for _, r := range list {
		recipeIDs = append(recipeIDs, r.ID)
		if r.AuthorID != nil {
			authorIDs = append(authorIDs, *r.AuthorID)
		}
	}

	favorited, err := s.favorites.Contains(ctx, p.UserID, recipeIDs)
	if err != nil {
		return nil, err
	}
	inCart, err := s.cart.Contains(ctx, p.UserID, recipeIDs)
	if err != nil {
		return nil, err
	}
	subscribed, err := s.subs.SubscribedTo(ctx, p.UserID, authorIDs)
	if err != nil {
		return nil, err
	}

	out := make([]RecipeResponse, 0, len(list))
	for i := range list {
		r := &list[i]
		resp := RecipeResponse{
			ID:               r.ID,
			Tags:             r.Tags,
			Ingredients:      make([]IngredientAmountResponse, 0, len(r.Ingredients)),
			IsFavorited:      favorited[r.ID],
			IsInShoppingCart: inCart[r.ID],
			Name:             r.Name,
			Image:            r.Image,
			Text:             r.Text,
			CookingTime:      r.CookingTime,
		}
		if resp.Tags == nil {
			resp.Tags = []domain.Tag{}
		}
		if r.Author != nil {
			author := common.NewUserResponse(r.Author, subscribed[r.Author.ID])
			resp.Author = &author
		}
		for _, ri := range r.Ingredients {
			row := IngredientAmountResponse{ID: ri.IngredientID, Amount: ri.Amount}
			if ri.Ingredient != nil {
				row.Name = ri.Ingredient.Name
				row.MeasurementUnit = ri.Ingredient.MeasurementUnit
			}
			resp.Ingredients = append(resp.Ingredients, row)
		}
		out = append(out, resp)
	}
	return out, nil
}
