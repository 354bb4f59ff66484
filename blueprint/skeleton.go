package blueprint

// skeletonTemplate is a route module that satisfies every structural check.
const skeletonTemplate = `from fastapi import APIRouter, Depends, HTTPException, Query, status
import logging

from app.models.{{resourceName}} import {{modelName}}
from app.services.{{resourceName}}_service import {{modelName}}Service
{{#if authRequired}}from app.auth import get_current_user
{{/if}}
logger = logging.getLogger(__name__)
router = APIRouter(prefix="{{routePrefix}}", tags=["{{resourceName}}"])


@router.get("/", response_model=list[{{modelName}}], status_code=status.HTTP_200_OK)
async def list_{{resourceName}}(
    skip: int = Query(0, ge=0),
    limit: int = Query(100, le=1000),
    service: {{modelName}}Service = Depends(),{{#if authRequired}}
    user=Depends(get_current_user),{{/if}}
) -> list[{{modelName}}]:
    """List {{resourceName}} records.

    Args:
        skip: Number of records to skip.
        limit: Maximum number of records to return.
        service: Injected {{modelName}} service.

    Returns:
        A page of {{modelName}} records.
    """
    try:
        return await service.list(skip=skip, limit=limit)
    except ValueError as exc:
        logger.error("Failed to list {{resourceName}}: %s", exc)
        raise HTTPException(status_code=status.HTTP_400_BAD_REQUEST, detail=str(exc))
`

// Skeleton returns a starter blueprint that passes structural validation.
func Skeleton(id, name, description string) *Blueprint {
	return &Blueprint{
		ID:          id,
		Name:        name,
		Description: description,
		Version:     "1.0.0",
		Strategy:    StrategyEmbeddedTemplate,
		Parameters: map[string]ParameterSpec{
			"modelName": {
				Type:        TypeString,
				Required:    true,
				Pattern:     "^[A-Z][a-zA-Z0-9]*$",
				Description: "Model class name (PascalCase)",
			},
			"resourceName": {
				Type:        TypeString,
				Required:    true,
				Pattern:     "^[a-z][a-z0-9_]*$",
				Description: "Resource name (snake_case)",
			},
			"routePrefix": {
				Type:        TypeString,
				Required:    true,
				Default:     "/api/v1",
				Description: "Route prefix",
			},
			"authRequired": {
				Type:        TypeBoolean,
				Default:     true,
				Description: "Require an authenticated user",
			},
		},
		CodeTemplate: CodeTemplate{
			Language:   LanguagePython,
			Executable: true,
			Testable:   true,
			Content:    skeletonTemplate,
		},
		Metadata: &Metadata{
			EstimatedTokens: 1000,
			GenerationTime:  "<1s",
			QualityTarget:   "10/10",
		},
	}
}
