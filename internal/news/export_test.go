package news

var CacheKey = cacheKey
