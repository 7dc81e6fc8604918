package dispatch

import (
	"context"

	"github.com/roach88/navegante/internal/model"
	"github.com/roach88/navegante/internal/store"
)

// ListSections returns every section, from the catalog source when one is set.
func (d *Dispatcher) ListSections(ctx context.Context) ([]model.Section, error) {
	if d.source != nil {
		sections, err := d.source.ListSections(ctx)
		if err != nil {
			return nil, &Error{Code: CodeRemote, Op: OpListSections, Message: "remote listing failed", Err: err}
		}
		return sections, nil
	}
	sections, err := d.store.Sections.All(ctx)
	if err != nil {
		return nil, storeFailure(OpListSections, err)
	}
	return sections, nil
}

// ListProducts returns every product, from the catalog source when one is set.
func (d *Dispatcher) ListProducts(ctx context.Context) ([]model.Product, error) {
	if d.source != nil {
		products, err := d.source.ListProducts(ctx)
		if err != nil {
			return nil, &Error{Code: CodeRemote, Op: OpListProducts, Message: "remote listing failed", Err: err}
		}
		return products, nil
	}
	products, err := d.store.Products.All(ctx)
	if err != nil {
		return nil, storeFailure(OpListProducts, err)
	}
	return products, nil
}

// SectionsWithProducts reads the sections and then the products of each one.
// Always reads the local store.
func (d *Dispatcher) SectionsWithProducts(ctx context.Context) ([]model.SectionWithProducts, error) {
	sections, err := d.store.Sections.All(ctx)
	if err != nil {
		return nil, storeFailure(OpSectionsWithProducts, err)
	}

	result := make([]model.SectionWithProducts, 0, len(sections))
	for _, section := range sections {
		products, err := d.store.Products.BySection(ctx, section.ID)
		if err != nil {
			return nil, storeFailure(OpSectionsWithProducts, err)
		}
		summaries := make([]model.ProductSummary, 0, len(products))
		for _, p := range products {
			summaries = append(summaries, model.ProductSummary{ID: p.ID, Name: p.Name, Price: p.Price})
		}
		result = append(result, model.SectionWithProducts{
			ID:       section.ID,
			Title:    section.Name,
			Products: summaries,
		})
	}
	return result, nil
}

// AddSection creates a section and returns its id.
func (d *Dispatcher) AddSection(ctx context.Context, name string) (int64, error) {
	name = model.NormalizeName(name)
	if err := model.ValidateName("name", name); err != nil {
		return 0, invalid(OpAddSection, err)
	}
	id, err := d.store.Sections.Insert(ctx, name)
	if err != nil {
		return 0, storeFailure(OpAddSection, err)
	}
	d.logger.Info("section added", "id", id, "name", name)
	return id, nil
}

// EditSection renames a section. An absent id is a no-op.
func (d *Dispatcher) EditSection(ctx context.Context, id int64, name string) error {
	name = model.NormalizeName(name)
	if err := model.ValidateName("name", name); err != nil {
		return invalid(OpEditSection, err)
	}
	n, err := d.store.Sections.Rename(ctx, id, name)
	if err != nil {
		return storeFailure(OpEditSection, err)
	}
	if n == 0 {
		d.logger.Debug("edit-section: no such section", "id", id)
	}
	return nil
}

// DeleteSection deletes a section and its products in one transaction.
// Fails with CodeInUse, changing nothing, if any of its products is on an order.
func (d *Dispatcher) DeleteSection(ctx context.Context, id int64) error {
	var removed int64
	err := d.store.WithTx(ctx, func(r store.Repos) error {
		refs, err := r.LineItems.CountBySection(ctx, id)
		if err != nil {
			return err
		}
		if refs > 0 {
			return inUse(OpDeleteSection, "section %d has products on %d order line(s)", id, refs)
		}
		if removed, err = r.Products.DeleteBySection(ctx, id); err != nil {
			return err
		}
		_, err = r.Sections.Delete(ctx, id)
		return err
	})
	if err != nil {
		return storeFailure(OpDeleteSection, err)
	}
	d.logger.Info("section deleted", "id", id, "products_removed", removed)
	return nil
}

// AddProduct creates a product in an existing section and returns its id.
func (d *Dispatcher) AddProduct(ctx context.Context, req AddProduct) (int64, error) {
	name := model.NormalizeName(req.Name)
	if err := model.ValidateName("name", name); err != nil {
		return 0, invalid(OpAddProduct, err)
	}
	if err := model.ValidatePrice(req.Price); err != nil {
		return 0, invalid(OpAddProduct, err)
	}

	var id int64
	err := d.store.WithTx(ctx, func(r store.Repos) error {
		exists, err := r.Sections.Exists(ctx, req.SectionID)
		if err != nil {
			return err
		}
		if !exists {
			return invalidf(OpAddProduct, "sectionId", "section %d does not exist", req.SectionID)
		}
		id, err = r.Products.Insert(ctx, name, req.Price, req.SectionID)
		return err
	})
	if err != nil {
		return 0, storeFailure(OpAddProduct, err)
	}
	d.logger.Info("product added", "id", id, "section_id", req.SectionID)
	return id, nil
}

// DeleteProduct deletes one product. An absent id is a no-op.
// Fails with CodeInUse if the product is on an order.
func (d *Dispatcher) DeleteProduct(ctx context.Context, id int64) error {
	err := d.store.WithTx(ctx, func(r store.Repos) error {
		refs, err := r.LineItems.CountByProduct(ctx, id)
		if err != nil {
			return err
		}
		if refs > 0 {
			return inUse(OpDeleteProduct, "product %d is on %d order line(s)", id, refs)
		}
		_, err = r.Products.Delete(ctx, id)
		return err
	})
	if err != nil {
		return storeFailure(OpDeleteProduct, err)
	}
	return nil
}
